package api

import (
	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/kernel"
	"github.com/samcharles93/cosine/internal/platform"
	"github.com/samcharles93/cosine/internal/strategy"
	"github.com/samcharles93/cosine/internal/tiling"
)

// CosRequest asks for the cosine of Values, computed in DType.
type CosRequest struct {
	DType    string    `json:"dtype,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
	Shape    []int     `json:"shape,omitempty"`
	Values   []float32 `json:"values"`
}

type CosResponse struct {
	ID       string      `json:"id"`
	Object   string      `json:"object"`
	DType    dtype.DType `json:"dtype"`
	Shape    []int       `json:"shape"`
	Values   []float32   `json:"values"`
	Strategy string      `json:"strategy"`
	Units    int         `json:"units"`
}

type PlanRequest struct {
	Elements   int    `json:"elements"`
	DType      string `json:"dtype,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	AlignBytes int    `json:"align_bytes,omitempty"`
}

type PlanResponse struct {
	Object         string       `json:"object"`
	Plan           *tiling.Plan `json:"plan"`
	Descriptor     []byte       `json:"descriptor"`
	WorkspaceBytes int          `json:"workspace_bytes"`
}

type Target struct {
	platform.Capabilities
	DTypes     []dtype.DType   `json:"dtypes"`
	Strategies []strategy.Kind `json:"strategies"`
	Default    strategy.Kind   `json:"default_strategy"`
	Active     bool            `json:"active"`
}

type TargetsResponse struct {
	Object string   `json:"object"`
	Data   []Target `json:"data"`
}

type LaunchResponse struct {
	Object string `json:"object"`
	*kernel.Report
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
