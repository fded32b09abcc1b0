// Package classifier runs a pre-trained network on scaled feature vectors.
package classifier

// Classifier maps a scaled feature vector to a malignancy probability.
// Implementations must be deterministic and must not change their parameters
// after construction.
type Classifier interface {
	// Predict returns the probability for x. len(x) must equal InputWidth.
	Predict(x []float64) (float64, error)
	// InputWidth is the fixed number of inputs the network accepts.
	InputWidth() int
	// Backend names the implementation, e.g. "native" or "onnx".
	Backend() string
	Close() error
}

// FeatureNamer is implemented by classifiers whose artifact records the
// feature order it was trained on.
type FeatureNamer interface {
	FeatureNames() []string
}
