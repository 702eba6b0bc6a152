package v1

import (
	"fmt"
	"net/http"

	"go-ats-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportUC usecase.ExportUsecase
}

func NewExportHandler(api *gin.RouterGroup, exportUC usecase.ExportUsecase) {
	handler := &ExportHandler{exportUC: exportUC}

	exports := api.Group("/exports")
	{
		exports.GET("/candidates", handler.Candidates)
	}
}

// ExportCandidates godoc
// @Summary      Export candidates
// @Description  Download all candidates as CSV or XLSX
// @Tags         exports
// @Produce      text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query     string  false  "csv (default) or xlsx"
// @Success      200     {file}    file
// @Failure      400     {object}  response.Response
// @Router       /exports/candidates [get]
func (h *ExportHandler) Candidates(c *gin.Context) {
	file, err := h.exportUC.ExportCandidates(c.Request.Context(), c.DefaultQuery("format", usecase.ExportFormatCSV))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
