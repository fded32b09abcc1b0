//go:build cgo
// +build cgo

package classifier

import (
	"fmt"
	"sync"

	"github.com/hyperjump/tumorcheck/internal/models"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXClassifier runs an ONNX export of the network through ONNX Runtime.
// It requires CGO and the onnxruntime shared library. The model must take a
// [1, width] float32 input and produce a [1, 1] float32 output.
type ONNXClassifier struct {
	session    *ort.AdvancedSession
	inputWidth int
	// Pre-allocated tensors for Run(); guarded by mu.
	input  *ort.Tensor[float32]
	output *ort.Tensor[float32]
	mu     sync.Mutex
}

// NewONNXClassifier loads the model at modelPath. InitializeEnvironment is called if not already done.
func NewONNXClassifier(modelPath string, inputWidth int, opts ONNXOptions) (*ONNXClassifier, error) {
	opts = opts.withDefaults()
	if inputWidth <= 0 {
		return nil, fmt.Errorf("%w: input width %d", models.ErrShapeMismatch, inputWidth)
	}
	if !ort.IsInitialized() {
		if opts.LibraryPath != "" {
			ort.SetSharedLibraryPath(opts.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(inputWidth)), make([]float32, inputWidth))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	output, err := ort.NewTensor(ort.NewShape(1, 1), make([]float32, 1))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return &ONNXClassifier{
		session:    session,
		inputWidth: inputWidth,
		input:      input,
		output:     output,
	}, nil
}

// Predict copies x into the input tensor and runs the session.
func (c *ONNXClassifier) Predict(x []float64) (float64, error) {
	if len(x) != c.inputWidth {
		return 0, fmt.Errorf("%w: got %d inputs, network expects %d", models.ErrShapeMismatch, len(x), c.inputWidth)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0, fmt.Errorf("onnx classifier is closed")
	}
	data := c.input.GetData()
	for i, v := range x {
		data[i] = float32(v)
	}
	if err := c.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}
	return float64(c.output.GetData()[0]), nil
}

// InputWidth returns the number of inputs.
func (c *ONNXClassifier) InputWidth() int { return c.inputWidth }

// Backend returns "onnx".
func (c *ONNXClassifier) Backend() string { return "onnx" }

// Close destroys the session and tensors.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	if c.input != nil {
		_ = c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		_ = c.output.Destroy()
		c.output = nil
	}
	return err
}
