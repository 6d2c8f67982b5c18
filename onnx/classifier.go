package onnx

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/krau/moodshop/config"
	"github.com/krau/moodshop/emotion"
)

type session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *session) destroy() {
	s.session.Destroy()
	s.input.Destroy()
	s.output.Destroy()
}

// Classifier runs a FER style emotion model through ONNX Runtime. Sessions
// are pooled; each one owns its input and output tensors.
type Classifier struct {
	pool      chan *session
	sessions  []*session
	labels    []string
	inputSize int
	logits    bool
}

var _ emotion.Analyzer = (*Classifier)(nil)

// NewClassifier expects the ONNX Runtime environment to be initialized.
func NewClassifier(modelPath string, cfg config.AnalyzerConfig) (*Classifier, error) {
	labels, err := Labels(cfg)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels configured")
	}
	size := cfg.InputSize
	if size <= 0 {
		return nil, fmt.Errorf("invalid input size %d", size)
	}
	poolSize := max(cfg.PoolSize, 1)

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model has no inputs or outputs")
	}

	c := &Classifier{
		pool:      make(chan *session, poolSize),
		labels:    labels,
		inputSize: size,
		logits:    cfg.Output != "probabilities",
	}
	for i := 0; i < poolSize; i++ {
		s, err := newSession(modelPath, inputs[0].Name, outputs[0].Name, size, len(labels))
		if err != nil {
			c.Close()
			return nil, err
		}
		c.sessions = append(c.sessions, s)
		c.pool <- s
	}
	return c, nil
}

func newSession(modelPath, inputName, outputName string, size, classes int) (*session, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 1, int64(size), int64(size)), make([]float32, size*size))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX Runtime session: %w", err)
	}
	return &session{session: s, input: inputTensor, output: outputTensor}, nil
}

// Analyze treats the whole frame as one face.
func (c *Classifier) Analyze(ctx context.Context, img image.Image) ([]emotion.Face, error) {
	inputData := Preprocess(img, c.inputSize)

	var s *session
	select {
	case s = <-c.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { c.pool <- s }()

	copy(s.input.GetData(), inputData)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return []emotion.Face{emotion.FaceFromLabels(scores(s.output.GetData(), c.labels, c.logits))}, nil
}

// scores pairs model outputs with labels, applying softmax first when the
// model emits logits. Labels without a matching output are skipped.
func scores(raw []float32, labels []string, logits bool) map[string]float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	if logits {
		out = Softmax(out)
	}

	m := make(map[string]float64, len(labels))
	for i, label := range labels {
		if i < len(out) {
			m[label] += out[i]
		}
	}
	return m
}

func (c *Classifier) Close() {
	for _, s := range c.sessions {
		s.destroy()
	}
	c.sessions = nil
}

// Preprocess center-crops img to a square, converts it to grayscale and
// returns size*size pixel intensities in [0,255].
func Preprocess(img image.Image, size int) []float32 {
	gray := imaging.Grayscale(imaging.Fill(img, size, size, imaging.Center, imaging.Linear))
	out := make([]float32, size*size)
	for i := range out {
		out[i] = float32(gray.Pix[i*4])
	}
	return out
}

func Softmax(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	m := x[0]
	for _, v := range x[1:] {
		m = max(m, v)
	}
	out := make([]float64, len(x))
	var sum float64
	for i, v := range x {
		out[i] = math.Exp(math.Max(v-m, -50))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
