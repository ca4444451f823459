package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/binder"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/requestid"
)

// ErrorPageParams is the data for a full error page.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

// ErrorToastParams is the data for a toast notification.
type ErrorToastParams struct {
	Message   string
	Type      string // "error", "warning" or "info"
	RequestID string
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	ErrorPage  func(ErrorPageParams) templ.Component
	ErrorToast func(ErrorToastParams) templ.Component

	// ToastTarget defaults to "#toast-container".
	ToastTarget string
	// ToastMode defaults to PatchPrepend.
	ToastMode datastar.ElementPatchMode
}

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Message    string
	Type       string
	LogLevel   slog.Level
}

const genericMessage = "Something went wrong, please try again"

func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Message:    genericMessage,
	}

	var httpErr HTTPError
	var userErr UserError
	switch {
	case errors.As(err, &userErr):
		info.StatusCode = http.StatusBadRequest
		info.Message = userErr.UserMessage()
		if errors.As(err, &httpErr) {
			info.StatusCode = httpErr.Code
		}
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Message = httpErr.Key
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		info.StatusCode = http.StatusUnsupportedMediaType
		info.Message = "unsupported_media_type"
	case errors.Is(err, binder.ErrInvalidForm), errors.Is(err, binder.ErrInvalidPath):
		info.StatusCode = http.StatusBadRequest
		info.Message = ErrBadRequest.Key
	}

	switch {
	case info.StatusCode >= http.StatusInternalServerError:
		info.Type = "error"
		info.LogLevel = slog.LevelError
	case info.StatusCode >= http.StatusBadRequest:
		info.Type = "warning"
		info.LogLevel = slog.LevelWarn
	default:
		info.Type = "info"
		info.LogLevel = slog.LevelInfo
	}
	return info
}

// NewErrorHandler returns an ErrorHandler that renders an error page for
// regular requests and a toast patch for datastar requests.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toast-container"
	}
	if cfg.ToastMode == "" {
		cfg.ToastMode = PatchPrepend
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		reqID := requestid.FromContext(r.Context())
		info := classifyError(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
			slog.Bool("is_datastar", IsDataStar(r)),
		)

		if IsDataStar(r) {
			if cfg.ErrorToast == nil {
				return
			}
			toast := cfg.ErrorToast(ErrorToastParams{Message: info.Message, Type: info.Type, RequestID: reqID})
			resp := Templ(toast, WithTarget(cfg.ToastTarget), WithPatchMode(cfg.ToastMode))
			if rerr := resp.Render(ctx.ResponseWriter(), r); rerr != nil {
				log.ErrorContext(r.Context(), "failed to render error toast", logger.Error(rerr))
			}
			return
		}

		if cfg.ErrorPage == nil {
			http.Error(ctx.ResponseWriter(), info.Message, info.StatusCode)
			return
		}
		page := cfg.ErrorPage(ErrorPageParams{
			Error:      info.Message,
			StatusCode: info.StatusCode,
			RequestID:  reqID,
			RetryURL:   r.URL.Path,
		})
		if rerr := TemplStatus(info.StatusCode, page).Render(ctx.ResponseWriter(), r); rerr != nil {
			log.ErrorContext(r.Context(), "failed to render error page", logger.Error(rerr))
		}
	}
}
