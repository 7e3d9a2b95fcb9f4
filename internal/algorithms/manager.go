package algorithms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"edge-detector/internal/algorithms/canny"
	"edge-detector/internal/algorithms/gradient"
	"edge-detector/internal/algorithms/laplacian"
	"edge-detector/internal/algorithms/params"
	"edge-detector/internal/raster"

	"github.com/samber/lo"
)

const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrUnknownBackend   = errors.New("unknown backend")
)

// Algorithm defines the interface for edge filters
type Algorithm interface {
	Process(ctx context.Context, input *raster.Gray, params map[string]interface{}) (*raster.Gray, error)
	ValidateParameters(params map[string]interface{}) error
	GetDefaultParameters() map[string]interface{}
	GetName() string
}

// Manager is a registry of filters per backend together with the parameter
// set currently configured for each filter name.
type Manager struct {
	backends         map[string]map[string]Algorithm
	currentBackend   string
	currentAlgorithm string
	parameters       map[string]map[string]interface{}
	mu               sync.RWMutex
}

func NewManager() *Manager {
	manager := &Manager{
		backends:         make(map[string]map[string]Algorithm),
		currentBackend:   BackendNative,
		currentAlgorithm: "sobel",
		parameters:       make(map[string]map[string]interface{}),
	}

	manager.registerAlgorithms()
	manager.initializeDefaultParameters()

	return manager
}

func (m *Manager) registerAlgorithms() {
	m.register(BackendNative,
		gradient.NewSobelProcessor(),
		gradient.NewPrewittProcessor(),
		laplacian.NewProcessor(),
		canny.NewProcessor(),
	)

	for backend, algs := range optionalBackends() {
		m.register(backend, algs...)
	}
}

func (m *Manager) register(backend string, algs ...Algorithm) {
	if m.backends[backend] == nil {
		m.backends[backend] = make(map[string]Algorithm)
	}
	for _, alg := range algs {
		m.backends[backend][alg.GetName()] = alg
	}
}

// initializeDefaultParameters seeds parameters from the native filters; the
// other backends accept the same keys.
func (m *Manager) initializeDefaultParameters() {
	for name, algorithm := range m.backends[BackendNative] {
		m.parameters[name] = algorithm.GetDefaultParameters()
	}
}

func (m *Manager) SetCurrentAlgorithm(algorithm string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.backends[m.currentBackend][algorithm]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}

	m.currentAlgorithm = algorithm
	return nil
}

func (m *Manager) GetCurrentAlgorithm() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentAlgorithm
}

func (m *Manager) SetBackend(backend string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.backends[backend]; !exists {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownBackend, backend, m.availableBackends())
	}

	m.currentBackend = backend
	return nil
}

func (m *Manager) GetBackend() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentBackend
}

// GetParameters returns a copy of the parameters configured for algorithm.
func (m *Manager) GetParameters(algorithm string) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, exists := m.parameters[algorithm]; exists {
		return params.Copy(p)
	}

	return make(map[string]interface{})
}

// SetParameters overlays values on the stored parameters of algorithm.
func (m *Manager) SetParameters(algorithm string, values map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.parameters[algorithm]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
	for k, v := range values {
		p[k] = v
	}
	return nil
}

func (m *Manager) GetAlgorithmFor(backend, name string) (Algorithm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	algs, exists := m.backends[backend]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
	if algorithm, exists := algs[name]; exists {
		return algorithm, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
}

func (m *Manager) GetAvailableAlgorithms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := lo.Keys(m.backends[m.currentBackend])
	slices.Sort(names)
	return names
}

func (m *Manager) GetAvailableBackends() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.availableBackends()
}

func (m *Manager) availableBackends() []string {
	names := lo.Keys(m.backends)
	slices.Sort(names)
	return names
}

// ProcessWith runs the named filter of backend with the stored parameters
// overlaid by overrides. The merged set is validated before the filter runs.
func (m *Manager) ProcessWith(ctx context.Context, backend, name string, input *raster.Gray, overrides map[string]interface{}) (*raster.Gray, error) {
	algorithm, err := m.GetAlgorithmFor(backend, name)
	if err != nil {
		return nil, err
	}

	p := params.Merge(m.GetParameters(name), overrides)
	if err := algorithm.ValidateParameters(p); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	result, err := algorithm.Process(ctx, input, p)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", backend, name, err)
	}
	return result, nil
}
