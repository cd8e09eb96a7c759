package models

// ServiceResponse is the envelope of every api body, Data is null when Error is set
type ServiceResponse[T any] struct {
	Data  *T     `json:"data"`
	Error string `json:"error"`
}

func GetServiceResponseOk[T any](data *T) ServiceResponse[T] {
	return ServiceResponse[T]{Data: data}
}

func GetServiceResponseError(err error) ServiceResponse[any] {
	return ServiceResponse[any]{Error: err.Error()}
}
