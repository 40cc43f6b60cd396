package connectivity

import (
	"context"
	"net/http"
	"weightsync/internal/providers"
	"weightsync/internal/structures"
)

// Monitor decides reachability with a HEAD request against the probe URL.
// Any HTTP response counts as online; only transport errors count as offline.
type Monitor struct {
	broadcaster
	url    string
	client *http.Client
	logger providers.Logger
}

func NewMonitor(conf *structures.Config, logger providers.Logger) Prober {
	return &Monitor{
		url:    conf.Sync.ProbeURL,
		client: &http.Client{Timeout: conf.Sync.ProbeTimeout},
		logger: logger,
	}
}

func (m *Monitor) Probe(ctx context.Context) bool {
	online := m.check(ctx)
	if m.publish(online) {
		if online {
			m.logger.Infof(providers.TypeSync, "connectivity regained (%s)", m.url)
		} else {
			m.logger.Warnf(providers.TypeSync, "connectivity lost (%s)", m.url)
		}
	}
	return online
}

func (m *Monitor) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.url, nil)
	if err != nil {
		m.logger.Errorf(providers.TypeSync, "invalid probe url %s: %v", m.url, err)
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Debugf(providers.TypeSync, "probe failed: %v", err)
		return false
	}
	_ = resp.Body.Close()
	return true
}
