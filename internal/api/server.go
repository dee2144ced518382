package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/kernel"
	"github.com/samcharles93/cosine/internal/logger"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
	"github.com/samcharles93/cosine/internal/tiling"
)

// maxBodyBytes bounds request bodies; a float32 array of a few million
// values fits comfortably.
const maxBodyBytes = 64 << 20

// Server handles the cosine REST endpoints for one target.
type Server struct {
	store *LaunchStore
	caps  platform.Capabilities
	opts  kernel.Options
	log   logger.Logger
}

// NewServer serves launches on the target described by caps. opts supplies
// the defaults a request may override.
func NewServer(store *LaunchStore, caps platform.Capabilities, opts kernel.Options, log logger.Logger) *Server {
	if store == nil {
		store = NewLaunchStore(0)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		store: store,
		caps:  caps,
		opts:  opts,
		log:   log,
	}
}

// Register mounts the /v1 routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/cos", s.handleCos)
	e.POST("/v1/plan", s.handlePlan)
	e.GET("/v1/targets", s.handleTargets)
	e.GET("/v1/launches/:id", s.handleGetLaunch)
}

func (s *Server) requestContext(c *echo.Context) context.Context {
	return logger.WithContext(c.Request().Context(), s.log)
}

// options resolves a request's dtype and strategy against the server
// defaults.
func (s *Server) options(dt, kind string) (dtype.DType, kernel.Options, error) {
	opts := s.opts
	d := dtype.F32
	if dt != "" {
		parsed, err := dtype.Parse(dt)
		if err != nil {
			return 0, opts, invalidParam("dtype", err)
		}
		d = parsed
	}
	if kind != "" {
		k, err := strategy.ParseKind(kind)
		if err != nil {
			return 0, opts, invalidParam("strategy", err)
		}
		opts.Strategy = k
	}
	return d, opts, nil
}

func (s *Server) handleCos(c *echo.Context) error {
	req, err := decodeJSON[CosRequest](http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	dt, opts, err := s.options(req.DType, req.Strategy)
	if err != nil {
		return writeLaunchError(c, err)
	}
	shape := req.Shape
	if len(shape) == 0 {
		shape = []int{len(req.Values)}
	}
	n := elements(shape)
	if n < 0 {
		return writeBadRequest(c, fmt.Sprintf("shape %v is negative or too large", shape))
	}
	if n != len(req.Values) {
		return writeBadRequest(c, fmt.Sprintf("shape %v holds %d values, got %d", shape, n, len(req.Values)))
	}

	ctx := s.requestContext(c)
	var (
		out []float32
		rep *kernel.Report
	)
	switch dt {
	case dtype.F16:
		out, rep, err = launchValues[dtype.Float16](ctx, req.Values, s.caps, opts)
	case dtype.BF16:
		out, rep, err = launchValues[dtype.BFloat16](ctx, req.Values, s.caps, opts)
	default:
		out, rep, err = launchValues[float32](ctx, req.Values, s.caps, opts)
	}
	if err != nil {
		return writeLaunchError(c, err)
	}
	s.store.Put(rep)
	s.log.Debug("launch stored", "launch_id", rep.ID, "stored", s.store.Len())

	return c.JSON(http.StatusOK, CosResponse{
		ID:       rep.ID,
		Object:   "cos",
		DType:    kernel.InferDType(dt),
		Shape:    kernel.InferShape(shape),
		Values:   out,
		Strategy: rep.Plan.Strategy.String(),
		Units:    rep.Plan.Units,
	})
}

// launchValues narrows values to T with round-to-nearest-even, runs the
// kernel and widens the results back for the response.
func launchValues[T dtype.Element](ctx context.Context, values []float32, caps platform.Capabilities, opts kernel.Options) ([]float32, *kernel.Report, error) {
	src := make([]T, len(values))
	dtype.FromFloat32(src, values, dtype.RoundNearestEven)
	dst := make([]T, len(values))
	rep, err := kernel.Launch(ctx, dst, src, caps, opts)
	if err != nil {
		return nil, nil, err
	}
	out := make([]float32, len(dst))
	dtype.ToFloat32(out, dst)
	return out, rep, nil
}

func (s *Server) handlePlan(c *echo.Context) error {
	req, err := decodeJSON[PlanRequest](http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	dt, opts, err := s.options(req.DType, req.Strategy)
	if err != nil {
		return writeLaunchError(c, err)
	}
	if req.AlignBytes > 0 {
		opts.AlignBytes = req.AlignBytes
	}
	plan, err := kernel.Plan(req.Elements, dt, s.caps, opts)
	if err != nil {
		return writeLaunchError(c, err)
	}
	desc, err := plan.Descriptor.MarshalBinary()
	if err != nil {
		return writeLaunchError(c, err)
	}
	return c.JSON(http.StatusOK, PlanResponse{
		Object:         "plan",
		Plan:           plan,
		Descriptor:     desc,
		WorkspaceBytes: plan.WorkspaceBytes(),
	})
}

func (s *Server) handleTargets(c *echo.Context) error {
	resp := TargetsResponse{Object: "list"}
	for _, v := range platform.Variants() {
		prof, _ := platform.Lookup(v)
		caps, err := platform.Query(v, platform.Overrides{Units: s.caps.Units})
		if err != nil {
			return writeLaunchError(c, err)
		}
		if v == s.caps.Variant {
			caps = s.caps
		}
		resp.Data = append(resp.Data, Target{
			Capabilities: caps,
			DTypes:       prof.DTypes,
			Strategies:   prof.Strategies,
			Default:      prof.Default,
			Active:       v == s.caps.Variant,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetLaunch(c *echo.Context) error {
	id := c.Param("id")
	rep, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, fmt.Sprintf("launch %q not found", id))
	}
	return c.JSON(http.StatusOK, LaunchResponse{Object: "launch", Report: rep})
}

func writeLaunchError(c *echo.Context, err error) error {
	var pe paramError
	switch {
	case errors.As(err, &pe):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), pe.param, "invalid_parameter")
	case errors.Is(err, tiling.ErrUnsupportedConfiguration):
		return writeError(c, http.StatusUnprocessableEntity, "unsupported_configuration", err.Error(), "", "")
	case errors.Is(err, tiling.ErrInvalidConfiguration),
		errors.Is(err, kernel.ErrLengthMismatch):
		return writeBadRequest(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}
