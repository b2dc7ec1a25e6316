package server

import (
	"errors"
	"net/http"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"github.com/KaramelBytes/clusterflow-cli/internal/results"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// matrixRequest carries a feature matrix. Scaler, when set, is applied before clustering.
type matrixRequest struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows" binding:"required"`
	Scaler  string      `json:"scaler"`
}

func (req *matrixRequest) frame() (*dataset.Frame, error) {
	return dataset.FromRows("request", req.Columns, req.Rows)
}

// matrix returns the (optionally scaled) feature matrix of the request.
func (req *matrixRequest) matrix() (*cluster.Matrix, error) {
	if req.Scaler == "" || req.Scaler == string(dataset.NoScaling) {
		return cluster.NewMatrix(req.Columns, req.Rows)
	}
	kind, err := dataset.ParseScalerKind(req.Scaler)
	if err != nil {
		return nil, err
	}
	f, err := req.frame()
	if err != nil {
		return nil, err
	}
	m, _, err := dataset.Scale(f, nil, kind)
	return m, err
}

// GET /api/v1/health
func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/v1/methods
func (h *Handler) handleMethods(c *gin.Context) {
	names := make([]string, 0, len(cluster.Methods()))
	for _, m := range cluster.Methods() {
		names = append(names, m.String())
	}
	c.JSON(http.StatusOK, gin.H{"methods": names})
}

// POST /api/v1/sweep
func (h *Handler) handleSweep(c *gin.Context) {
	var req struct {
		matrixRequest
		KMin int `json:"k_min"`
		KMax int `json:"k_max"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.KMin == 0 {
		req.KMin = h.opt.DefaultKMin
	}
	if req.KMax == 0 {
		req.KMax = h.opt.DefaultKMax
		if req.KMax > len(req.Rows)/2+1 {
			req.KMax = len(req.Rows)/2 + 1
		}
	}
	m, err := req.matrix()
	if err != nil {
		respondError(c, err)
		return
	}
	k, rep, err := h.selector.Select(m, req.KMin, req.KMax)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"optimal_k": k, "report": rep})
}

// POST /api/v1/cluster
func (h *Handler) handleCluster(c *gin.Context) {
	var req struct {
		matrixRequest
		K      int    `json:"k" binding:"required"`
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	m, err := req.matrix()
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.runner.RunNamed(m, req.K, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/v1/compare
func (h *Handler) handleCompare(c *gin.Context) {
	var req struct {
		matrixRequest
		K       int      `json:"k" binding:"required"`
		Methods []string `json:"methods"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	methods := cluster.Methods()
	if len(req.Methods) > 0 {
		methods = make([]cluster.Method, 0, len(req.Methods))
		for _, name := range req.Methods {
			mth, ok := cluster.ParseMethod(name)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown method: " + name})
				return
			}
			methods = append(methods, mth)
		}
	}
	m, err := req.matrix()
	if err != nil {
		respondError(c, err)
		return
	}
	runs := make([]*cluster.Result, 0, len(methods))
	for _, mth := range methods {
		res, err := h.runner.Run(m, req.K, mth)
		if err != nil {
			respondError(c, err)
			return
		}
		runs = append(runs, res)
	}
	best, cmp, err := cluster.RankMethods(cluster.CandidatesFor(methods, runs))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"best": best, "comparison": cmp})
}

// POST /api/v1/profile
// Clusters the rows and describes each cluster in the units of the request.
func (h *Handler) handleProfile(c *gin.Context) {
	var req struct {
		matrixRequest
		K      int    `json:"k" binding:"required"`
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	f, err := req.frame()
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := req.matrix()
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.runner.RunNamed(m, req.K, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	prof, err := results.BuildProfile(f, f.NumericColumns(), res)
	if err != nil {
		respondError(c, err)
		return
	}
	proj, err := results.Project2D(m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "profile": prof, "projection": proj})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cluster.ErrInvalidMatrix),
		errors.Is(err, dataset.ErrEmptyData),
		errors.Is(err, dataset.ErrUnknownColumn),
		errors.Is(err, dataset.ErrUnknownScaler),
		errors.Is(err, dataset.ErrTransform):
		return http.StatusBadRequest
	case errors.Is(err, cluster.ErrInvalidRange),
		errors.Is(err, cluster.ErrInvalidClusterCount),
		errors.Is(err, cluster.ErrInsufficientClusters),
		errors.Is(err, cluster.ErrDegenerateInput),
		errors.Is(err, cluster.ErrShapeMismatch),
		errors.Is(err, cluster.ErrNoCandidates):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
