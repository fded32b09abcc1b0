package classifier

// ONNXOptions configures the ONNX Runtime backend.
type ONNXOptions struct {
	// LibraryPath points at the onnxruntime shared library. Empty uses the platform default.
	LibraryPath string
	InputName   string
	OutputName  string
}

func (o ONNXOptions) withDefaults() ONNXOptions {
	if o.InputName == "" {
		o.InputName = "input"
	}
	if o.OutputName == "" {
		o.OutputName = "output"
	}
	return o
}
