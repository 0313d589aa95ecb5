package auth

import "gadamagado/api/internal/models"

// Status tags the outcome of one resolution attempt.
type Status int

const (
	// StatusNoCredential means the channel had nothing to check.
	StatusNoCredential Status = iota
	// StatusInvalid means a credential was present but did not resolve
	// to a live principal.
	StatusInvalid
	// StatusResolved carries an authenticated user.
	StatusResolved
	// StatusFault means the directory or session store failed; the
	// credential was never judged.
	StatusFault
)

type Result struct {
	Status Status
	User   models.User
	Err    error
}

func resolved(user models.User) Result {
	return Result{Status: StatusResolved, User: user}
}

func noCredential() Result {
	return Result{Status: StatusNoCredential}
}

func invalid(err error) Result {
	return Result{Status: StatusInvalid, Err: err}
}

func fault(err error) Result {
	return Result{Status: StatusFault, Err: err}
}
