package mutation

import (
	"errors"

	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/models"
)

type Kind int

const (
	KindSuccess Kind = iota
	KindUnauthorized
	KindValidation
	KindBusy
	KindFailure
)

// Outcome is how a finished submission is reported to the user.
type Outcome struct {
	Kind  Kind
	Err   error
	Toast string
}

func (o Outcome) Unauthorized() bool { return o.Kind == KindUnauthorized }

const busyToast = "Please wait for the current submission to finish"

// Classify maps err to an outcome. failure is the generic message for
// anything that is not unauthorized, invalid input or a busy form.
// Unauthorized outcomes never carry a toast: the caller ends the session.
func Classify(err error, success, failure string) Outcome {
	if err == nil {
		return Outcome{Kind: KindSuccess, Toast: success}
	}
	if errors.Is(err, upstream.ErrUnauthorized) {
		return Outcome{Kind: KindUnauthorized, Err: err}
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return Outcome{Kind: KindValidation, Err: err, Toast: verr.Message}
	}
	if errors.Is(err, ErrBusy) {
		return Outcome{Kind: KindBusy, Err: err, Toast: busyToast}
	}
	return Outcome{Kind: KindFailure, Err: err, Toast: failure}
}
