package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/curve"
)

var errNoCurves = errors.New("no curves supplied and no build has run yet")

// listCurves handles GET /api/v1/curves
func (s *Server) listCurves(c *gin.Context) {
	c.JSON(http.StatusOK, CurvesResponse{Curves: s.builder.CurveNames()})
}

// listInstruments handles GET /api/v1/instruments
func (s *Server) listInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, InstrumentsResponse{Instruments: s.builder.InstrumentFrame()})
}

// build handles POST /api/v1/build
func (s *Server) build(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	out, err := s.builder.BuildCurves(req.Prices)
	if err != nil {
		s.log.WithError(err).Warn("build failed")
		writeBuildError(c, err)
		return
	}
	repriced, err := s.builder.Reprice(out.CurveMap)
	if err != nil {
		writeBuildError(c, err)
		return
	}

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	c.JSON(http.StatusOK, BuildResponse{
		Curves:   out.CurveMap.Snapshot(),
		Jacobian: jacobianPayload(out),
		Solver: SolverSummary{
			Iterations:  out.Solve.Iterations,
			Evaluations: out.Solve.Evaluations,
			Cost:        out.Solve.Cost,
			Status:      out.Solve.Message,
		},
		Repriced: repriced.Quotes(),
	})
}

// reprice handles POST /api/v1/reprice
func (s *Server) reprice(c *gin.Context) {
	var req RepriceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
			return
		}
	}

	var cm *curve.CurveMap
	if req.Curves != nil {
		var err error
		if cm, err = curve.FromSnapshot(*req.Curves); err != nil {
			writeBuildError(c, err)
			return
		}
	} else {
		var ok bool
		if cm, ok = s.LastBuild(); !ok {
			abortWithError(c, http.StatusConflict, "NO_CURVES", errNoCurves)
			return
		}
	}

	ladder, err := s.builder.Reprice(cm)
	if err != nil {
		writeBuildError(c, err)
		return
	}
	c.JSON(http.StatusOK, RepriceResponse{Prices: ladder.Quotes()})
}

func jacobianPayload(out *builder.BuildOutput) JacobianPayload {
	rows, cols := out.Jacobian.Dims()
	p := JacobianPayload{
		Rows:    make([]string, 0, rows),
		Columns: make([]string, 0, cols),
		Values:  make([][]float64, rows),
	}
	for _, l := range out.CurveMap.Labels() {
		p.Rows = append(p.Rows, l.Curve+"@"+l.Date)
	}
	for _, inst := range out.Instruments {
		p.Columns = append(p.Columns, inst.Name())
	}
	for i := 0; i < rows; i++ {
		p.Values[i] = append([]float64(nil), out.Jacobian.RawRowView(i)...)
	}
	return p
}
