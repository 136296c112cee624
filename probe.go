package fluke45

import "fmt"

// ProbePort opens device and checks that a meter answers with a prompt. On
// success the open transport is returned for a Session to adopt; on every
// failure the transport has already been closed.
func ProbePort(device string, opts ...Option) (Transport, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return probePort(device, cfg)
}

func probePort(device string, cfg Config) (Transport, error) {
	log := cfg.Logger.With("port", device)
	log.Debug("probing port", "baud", cfg.BaudRate)

	t, err := cfg.Opener(device, cfg.BaudRate, cfg.Timeout)
	if err != nil {
		log.Warn("failed to open port", "error", err)
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}

	if err := t.ResetInputBuffer(); err != nil {
		log.Warn("failed to flush input", "error", err)
		_ = t.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", device, err)
	}

	ok, err := syncPrompt(t, cfg, log)
	if err != nil {
		log.Warn("transport error while probing", "error", err)
		_ = t.Close()
		return nil, fmt.Errorf("failed to probe %s: %w", device, err)
	}
	if !ok {
		log.Debug("no prompt")
		_ = t.Close()
		return nil, fmt.Errorf("%s: %w", device, ErrNoPrompt)
	}

	log.Debug("meter answered")
	return t, nil
}

// Probe reports whether a meter answers on device. Errors are logged, not returned.
func Probe(device string, opts ...Option) bool {
	t, err := ProbePort(device, opts...)
	if err != nil {
		return false
	}
	_ = t.Close()
	return true
}

// FindPorts probes every enumerated port in turn and returns those with a meter.
func FindPorts(opts ...Option) ([]string, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ports, err := cfg.Lister()
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}

	found := []string{}
	for _, device := range ports {
		t, err := probePort(device, cfg)
		if err != nil {
			continue
		}
		_ = t.Close()
		cfg.Logger.Info("meter found", "port", device)
		found = append(found, device)
	}
	return found, nil
}

// findFirst returns the first enumerated port with a meter, leaving it open.
func findFirst(cfg Config) (string, Transport, error) {
	ports, err := cfg.Lister()
	if err != nil {
		return "", nil, fmt.Errorf("failed to list ports: %w", err)
	}
	for _, device := range ports {
		if t, err := probePort(device, cfg); err == nil {
			cfg.Logger.Info("meter found", "port", device)
			return device, t, nil
		}
	}
	return "", nil, ErrNoMeterFound
}
