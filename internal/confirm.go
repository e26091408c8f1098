package internal

// Confirmer asks the operator a yes/no question before an operation
// touches the profile.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

type ConfirmFunc func(question string) (bool, error)

func (f ConfirmFunc) Confirm(question string) (bool, error) {
	return f(question)
}

// AlwaysConfirm answers every question with yes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })
