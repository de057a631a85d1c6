package pasetotoken

type ErrConfig struct {
	Msg string
}

func (e ErrConfig) Error() string {
	return "paseto config error: " + e.Msg
}

type ErrInvalidToken struct {
	Err error
}

func (e ErrInvalidToken) Error() string {
	if e.Err == nil {
		return "invalid token"
	}
	return "invalid token: " + e.Err.Error()
}

func (e ErrInvalidToken) Unwrap() error {
	return e.Err
}
