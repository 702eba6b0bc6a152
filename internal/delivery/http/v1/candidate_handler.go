package v1

import (
	"net/http"

	"go-ats-backend/internal/delivery/http/middleware"
	"go-ats-backend/internal/delivery/http/response"
	"go-ats-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

// NewCandidateHandler registers the candidate routes. upload handles the
// optional CV file and writeLimit throttles mutating routes; either may be
// nil.
func NewCandidateHandler(api *gin.RouterGroup, candidateUC domain.CandidateUsecase, upload, writeLimit gin.HandlerFunc) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	write := func(h ...gin.HandlerFunc) []gin.HandlerFunc {
		var chain []gin.HandlerFunc
		if writeLimit != nil {
			chain = append(chain, writeLimit)
		}
		return append(chain, h...)
	}
	withUpload := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if upload == nil {
			return write(h)
		}
		return write(upload, h)
	}

	candidates := api.Group("/candidates")
	{
		candidates.POST("", withUpload(handler.Create)...)
		candidates.GET("", handler.List)
		candidates.GET("/:id", handler.GetByID)
		candidates.PUT("/:id", withUpload(handler.Update)...)
		candidates.DELETE("/:id", write(handler.Delete)...)
	}
}

// CreateCandidate godoc
// @Summary      Create a candidate
// @Description  Create a candidate with education and experience. Accepts JSON or multipart/form-data; in multipart bodies education, experience and tags are JSON-encoded strings and the CV goes in the "cv" field (PDF or DOCX, max 5 MB).
// @Tags         candidates
// @Accept       json,mpfd
// @Produce      json
// @Param        candidate  body      domain.CandidateInput  true   "Candidate"
// @Param        cv         formData  file                   false  "CV file (PDF/DOCX)"
// @Success      201        {object}  response.Response{data=domain.Candidate}
// @Failure      400        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Failure      413        {object}  response.Response
// @Router       /candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidate, err := h.candidateUC.CreateCandidate(c.Request.Context(), payload, middleware.CVFilePath(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Candidate created successfully", candidate)
}

// ListCandidates godoc
// @Summary      List candidates
// @Description  Get all candidates with their education and experience
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Candidate}
// @Failure      500  {object}  response.Response
// @Router       /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidateUC.ListCandidates(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "", candidates)
}

// GetCandidate godoc
// @Summary      Get candidate details
// @Description  Get a candidate with education, experience and recruitment stages
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.Candidate}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
func (h *CandidateHandler) GetByID(c *gin.Context) {
	candidate, err := h.candidateUC.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "", candidate)
}

// UpdateCandidate godoc
// @Summary      Update a candidate
// @Description  Partially update a candidate. Only supplied fields change; education and experience are not modified. A new CV replaces the stored path.
// @Tags         candidates
// @Accept       json,mpfd
// @Produce      json
// @Param        id         path      string                 true   "Candidate ID"
// @Param        candidate  body      domain.CandidatePatch  true   "Fields to change"
// @Param        cv         formData  file                   false  "CV file (PDF/DOCX)"
// @Success      200        {object}  response.Response{data=domain.Candidate}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Failure      413        {object}  response.Response
// @Router       /candidates/{id} [put]
func (h *CandidateHandler) Update(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidate, err := h.candidateUC.UpdateCandidate(c.Request.Context(), c.Param("id"), payload, middleware.CVFilePath(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate updated successfully", candidate)
}

// DeleteCandidate godoc
// @Summary      Delete a candidate
// @Description  Delete a candidate together with its education, experience and recruitment stages
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [delete]
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.DeleteCandidate(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate deleted successfully", nil)
}
