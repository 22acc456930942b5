package gmail

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mailsweep-backend/pkg/mailbox"
	"mailsweep-backend/pkg/retry"

	"golang.org/x/oauth2"
)

// wrapError tags provider errors with the mailbox sentinel matching their
// status so callers can branch with errors.Is while the original
// *googleapi.Error stays reachable through errors.As.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var kind error
	switch code := retry.StatusCode(err); {
	case code == http.StatusUnauthorized || isExpiredGrant(err):
		kind = mailbox.ErrUnauthorized
	case code == http.StatusNotFound:
		kind = mailbox.ErrNotFound
	case code == http.StatusConflict || strings.Contains(err.Error(), "Label name exists"):
		kind = mailbox.ErrConflict
	case code == http.StatusBadRequest:
		kind = mailbox.ErrInvalid
	}

	if kind != nil {
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isExpiredGrant(err error) bool {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "Token has been expired")
}
