//go:build !cgo
// +build !cgo

package classifier

import (
	"errors"
)

var errONNXUnavailable = errors.New("ONNX classifier requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXClassifier stub type when built without CGO (see onnx.go for real implementation).
type ONNXClassifier struct{}

// NewONNXClassifier returns an error when built without CGO (ONNX not available).
func NewONNXClassifier(_ string, _ int, _ ONNXOptions) (*ONNXClassifier, error) {
	return nil, errONNXUnavailable
}

func (c *ONNXClassifier) Predict(_ []float64) (float64, error) { return 0, errONNXUnavailable }
func (c *ONNXClassifier) InputWidth() int                      { return 0 }
func (c *ONNXClassifier) Backend() string                      { return "onnx" }
func (c *ONNXClassifier) Close() error                         { return nil }
