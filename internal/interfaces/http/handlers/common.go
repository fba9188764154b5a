package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cdforge/internal/config"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/errors"
	"github.com/turtacn/cdforge/pkg/types/structure"
)

// endpoint selects the legacy status of an error response.
type endpoint int

const (
	endpointGeneration endpoint = iota
	endpointMinimization
	endpointSession
)

// statusFor returns the HTTP status of err under policy.  The legacy policy
// answers every generation failure with 500 and every minimization failure
// with 200.
func statusFor(policy string, ep endpoint, err error) int {
	if policy == config.StatusPolicyLegacy {
		switch ep {
		case endpointGeneration:
			return http.StatusInternalServerError
		case endpointMinimization:
			return http.StatusOK
		}
	}
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	return errors.HTTPStatusForCode(ae.Code)
}

// publicMessage returns the text placed in the error envelope.  Errors that
// are not AppErrors are masked.
func publicMessage(err error) string {
	var ae *errors.AppError
	if errors.As(err, &ae) {
		return ae.PublicMessage()
	}
	return errors.DefaultMessageForCode(errors.CodeInternal)
}

// respondError writes the {success:false, error} envelope and logs the
// failure at a level matching its status.
func respondError(c *gin.Context, logger logging.Logger, policy string, ep endpoint, err error) {
	status := statusFor(policy, ep, err)
	code := errors.GetCode(err)
	log := logger.WithContext(c.Request.Context())
	fields := []logging.Field{
		logging.String(logging.FieldErrorCode, code.String()),
		logging.String("path", c.Request.URL.Path),
		logging.Err(err),
	}
	if errors.IsServerError(code) {
		log.Error("request failed", fields...)
	} else {
		log.Warn("request failed", fields...)
	}
	_ = c.Error(err)
	c.JSON(status, structure.ErrorResponse{Success: false, Error: publicMessage(err)})
}

func normalizePolicy(policy string) string {
	if policy == config.StatusPolicyLegacy {
		return policy
	}
	return config.StatusPolicyConsistent
}

//Personal.AI order the ending
