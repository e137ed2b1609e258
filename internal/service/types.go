// Package service is the client side of the maze service: generation,
// solving and comparison requests over JSON.
package service

import "context"

// Service is the remote maze backend.
type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error)
	Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error)
}

type GenerateRequest struct {
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	Density float64 `json:"density"`
	Start   [2]int  `json:"start"`
	Goal    [2]int  `json:"goal"`
}

// GenerateResponse is the generated maze. Rows, Cols, Start and Goal are
// echoed by some servers after their own clamping; they are optional.
type GenerateResponse struct {
	Grid      [][]int `json:"grid"`
	Rows      int     `json:"rows,omitempty"`
	Cols      int     `json:"cols,omitempty"`
	Start     *[2]int `json:"start,omitempty"`
	Goal      *[2]int `json:"goal,omitempty"`
	GenTimeMs float64 `json:"gen_time_ms"`
	Note      string  `json:"note,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type SolveRequest struct {
	Grid  [][]int `json:"grid"`
	Start [2]int  `json:"start"`
	Goal  [2]int  `json:"goal"`
	Algo  string  `json:"algo"`
}

type SolveResponse struct {
	TimeMs       float64 `json:"time_ms"`
	VisitedCount int     `json:"visited_count"`
	PathLength   int     `json:"path_length"`
	Visited      [][]int `json:"visited"`
	Path         [][]int `json:"path"`
	Error        string  `json:"error,omitempty"`
}

type CompareRequest struct {
	Grid  [][]int `json:"grid"`
	Start [2]int  `json:"start"`
	Goal  [2]int  `json:"goal"`
}

// AlgoStat is one row of a comparison.
type AlgoStat struct {
	Algo         string  `json:"algo"`
	TimeMs       float64 `json:"time_ms"`
	VisitedCount int     `json:"visited_count"`
	PathLength   int     `json:"path_length"`
}

type CompareResponse struct {
	Results []AlgoStat `json:"results"`
	Error   string     `json:"error,omitempty"`
}

func (r *GenerateResponse) errorMessage() string { return r.Error }
func (r *SolveResponse) errorMessage() string    { return r.Error }
func (r *CompareResponse) errorMessage() string  { return r.Error }
