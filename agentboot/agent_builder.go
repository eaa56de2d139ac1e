package agentboot

import (
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/nlu"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/booking-agent/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
)

type AgentBuilder struct {
	config AgentConfig
}

func NewAgentBuilder() *AgentBuilder {
	return &AgentBuilder{
		config: AgentConfig{
			Clock: time.Now,
		},
	}
}

func (b *AgentBuilder) WithMachine(m *booking.Machine) *AgentBuilder {
	b.config.Machine = m
	return b
}

func (b *AgentBuilder) WithRenderer(r render.Renderer) *AgentBuilder {
	b.config.Renderer = r
	return b
}

func (b *AgentBuilder) WithController(c *session.Controller) *AgentBuilder {
	b.config.Controller = c
	return b
}

func (b *AgentBuilder) WithSafety(s nlu.SafetyChecker) *AgentBuilder {
	b.config.Safety = s
	return b
}

func (b *AgentBuilder) WithClock(now func() time.Time) *AgentBuilder {
	b.config.Clock = now
	return b
}

// Build fills in template rendering, keyword safety and an in-memory
// session store for anything not configured.
func (b *AgentBuilder) Build() *Agent {
	if b.config.Machine == nil {
		logger.Fatal("Agent requires a booking machine")
	}
	if b.config.Renderer == nil {
		b.config.Renderer = render.NewTemplates(b.config.Machine.Catalog())
	}
	if b.config.Safety == nil {
		b.config.Safety = nlu.NewKeywordSafety()
	}
	if b.config.Controller == nil {
		b.config.Controller = session.NewController(session.NewMemoryStore())
	}

	return &Agent{config: b.config}
}
