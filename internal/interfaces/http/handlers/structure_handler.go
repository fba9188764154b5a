package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cdforge/internal/application/generation"
	"github.com/turtacn/cdforge/internal/application/minimization"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/errors"
	"github.com/turtacn/cdforge/pkg/types/structure"
)

// StructureHandler serves structure generation and minimization.
type StructureHandler struct {
	generator generation.Service
	minimizer minimization.Service
	policy    string
	logger    logging.Logger
}

// NewStructureHandler creates a StructureHandler.  policy is one of the
// config.StatusPolicy* values.
func NewStructureHandler(gen generation.Service, mz minimization.Service, policy string, logger logging.Logger) *StructureHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StructureHandler{
		generator: gen,
		minimizer: mz,
		policy:    normalizePolicy(policy),
		logger:    logger.Named("structure_handler"),
	}
}

// RegisterRoutes registers the structure routes.
func (h *StructureHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/generar_estructura", h.Generate)
	r.POST("/minimizar_estructura", h.Minimize)
}

// Generate handles POST /generar_estructura.
func (h *StructureHandler) Generate(c *gin.Context) {
	var req structure.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, h.policy, endpointGeneration,
			errors.InvalidParam("invalid request body").WithCause(err))
		return
	}

	res, err := h.generator.Generate(c.Request.Context(), &generation.GenerateInput{Descriptor: req.StringCanonico})
	if err != nil {
		respondError(c, h.logger, h.policy, endpointGeneration, err)
		return
	}

	resp := structure.GenerateResponse{
		Success:        true,
		SMILES:         res.SMILES,
		Imagen2D:       res.ImageBase64(),
		PDBNoH:         res.PDB,
		PDBH:           res.PDB,
		Mensaje:        generation.SuccessMessage,
		UserDir:        res.UserDir,
		SessionID:      res.SessionID,
		SMILESUnidades: res.UnitSMILES,
	}
	for _, a := range res.Artifacts {
		resp.Artifacts = append(resp.Artifacts, structure.Artifact{Name: a.Name, Key: a.Key, URL: a.URL, Size: a.Size})
	}
	c.JSON(http.StatusOK, resp)
}

// Minimize handles POST /minimizar_estructura.
func (h *StructureHandler) Minimize(c *gin.Context) {
	var req structure.MinimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, h.policy, endpointMinimization,
			errors.New(errors.CodeMissingInput, errors.MsgMissingInput).WithCause(err))
		return
	}

	res, err := h.minimizer.Minimize(c.Request.Context(), &minimization.MinimizeInput{PDB: req.PDBData, Ref: req.Ref()})
	if err != nil {
		respondError(c, h.logger, h.policy, endpointMinimization, err)
		return
	}
	c.JSON(http.StatusOK, structure.MinimizeResponse{Success: true, MinimizedPDB: res.PDB})
}

//Personal.AI order the ending
