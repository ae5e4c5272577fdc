package httpapi

import (
	"errors"
	"net/http"

	"github.com/R3E-Network/blog_service/internal/app/domain/post"
	"github.com/R3E-Network/blog_service/internal/app/storage"
	svcerrors "github.com/R3E-Network/blog_service/internal/errors"
	"github.com/R3E-Network/blog_service/internal/httputil"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// classify maps an error returned by the post service onto the error shown
// to clients. Storage causes never leave the process; action names the
// failed operation in the generic message.
func classify(err error, action string) *svcerrors.ServiceError {
	if svcErr := svcerrors.GetServiceError(err); svcErr != nil {
		return svcErr
	}

	var vErr *post.ValidationError
	switch {
	case errors.As(err, &vErr):
		return svcerrors.Validation(vErr.Message, err).WithDetails("field", vErr.Field)
	case errors.Is(err, storage.ErrSlugTaken):
		return svcerrors.Conflict("slug already exists", err)
	default:
		return svcerrors.Internal("failed to "+action, err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, svcErr *svcerrors.ServiceError) {
	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		entry := log.WithContext(r.Context()).WithField("code", svcErr.Code)
		if svcErr.Err != nil {
			entry = entry.WithError(svcErr.Err)
		}
		entry.Error(svcErr.Message)
	}
	httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}
