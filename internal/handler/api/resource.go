package api

import (
	"log/slog"
	"net/http"

	reqdto "resource-finder/internal/handler/dto/request"
	resdto "resource-finder/internal/handler/dto/response"
	"resource-finder/internal/handler/httperr"
	"resource-finder/internal/pkg/errs"
	"resource-finder/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ResourceHandler struct {
	finder usecase.ResourceFinder
}

func NewResourceHandler(finder usecase.ResourceFinder) *ResourceHandler {
	return &ResourceHandler{finder: finder}
}

// @Summary Find learning resources
// @Description Ask the model for free and paid resources per level, priced in the caller's local currency
// @Tags resources
// @Accept json
// @Produce json
// @Param request body reqdto.GetResourcesRequest true "Subject to learn"
// @Success 200 {object} resdto.ResourcesResponse
// @Failure 400 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/get-resources [post]
func (h *ResourceHandler) GetResources(c *gin.Context) {
	var req reqdto.GetResourcesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, bindErrorMessage(err), nil)
		return
	}

	listing, err := h.finder.Find(c.Request.Context(), usecase.FindRequest{
		Subject:  req.Subject,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		h.abortWithFindError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromResourceListing(listing))
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errs.As(err, &verrs) {
		return "Invalid request body"
	}
	for _, fe := range verrs {
		if fe.Tag() == "max" {
			return "Subject is too long"
		}
	}
	return "Subject is required"
}

func (h *ResourceHandler) abortWithFindError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, usecase.ErrSubjectRequired):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Subject is required", nil)

	case errs.Is(err, usecase.ErrUpstreamFailed):
		details := resdto.UpstreamFailureDetails{Message: err.Error()}
		var upstreamErr *usecase.UpstreamError
		if errs.As(err, &upstreamErr) {
			details.Status = upstreamErr.StatusCode
			details.Body = upstreamErr.Body
		}
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Failed to fetch resources", details)

	case errs.Is(err, usecase.ErrParseFailed):
		details := resdto.ParseFailureDetails{ParseError: err.Error()}
		var parseErr *usecase.ParseError
		if errs.As(err, &parseErr) {
			details.Content = parseErr.Content
			details.ParseError = parseErr.Err.Error()
		}
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Failed to parse resources", details)

	default:
		slog.ErrorContext(c.Request.Context(), "unexpected error finding resources",
			"error", err, "stack", errs.ExtractStackLines(err, 10))
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
