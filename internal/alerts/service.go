package alerts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/llm"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

// FallbackText is shown when the collaborator could not produce a diagnosis.
const FallbackText = "Falha ao obter diagnóstico da IA. Verifique a conexão."

// UnknownDevice describes an alert whose device no longer resolves.
const UnknownDevice = "Desconhecido"

const promptTemplate = `Analise o seguinte incidente de infraestrutura de TI e forneça um diagnóstico técnico resumido:
Incidente: %s
Detalhes do Dispositivo: %s

Responda em Português do Brasil com:
1. Causa Raiz Provável
2. Ação Corretiva Recomendada (passo-a-passo)
3. Impacto esperado se não resolvido.`

// ListActive returns unresolved alerts in insertion order.
func (m *Module) ListActive() []models.Alert {
	return m.state.Snapshot().ActiveAlerts()
}

// List returns every alert, resolved ones included.
func (m *Module) List() []models.Alert {
	return m.state.Snapshot().Alerts
}

// Get returns one alert.
func (m *Module) Get(id string) (models.Alert, error) {
	a, ok := m.state.Snapshot().Alert(id)
	if !ok {
		return models.Alert{}, fmt.Errorf("alert %q: %w", id, state.ErrNotFound)
	}
	return a, nil
}

// Create raises a new active alert.
func (m *Module) Create(ctx context.Context, severity models.Status, message, deviceID string) (models.Alert, error) {
	id := m.newID()
	s, err := m.state.Dispatch(state.CreateAlert{
		ID:       id,
		Severity: severity,
		Message:  message,
		DeviceID: deviceID,
		Now:      m.now().UTC(),
	})
	if err != nil {
		return models.Alert{}, err
	}
	a, _ := s.Alert(id)
	m.logger.Info("alert created",
		zap.String("alert_id", id),
		zap.String("severity", string(a.Severity)),
		zap.String("device_id", a.DeviceID),
	)
	m.publish(ctx, state.TopicAlertCreated, a)
	return a, nil
}

// Inspection returns the current inspection pointer and analysis.
func (m *Module) Inspection() state.Inspection {
	return m.state.Snapshot().Inspection
}

// Select opens an alert for inspection and clears any previous analysis.
// An empty id closes the inspection.
func (m *Module) Select(ctx context.Context, id string) (state.Inspection, error) {
	s, err := m.state.Dispatch(state.SelectAlert{ID: id})
	if err != nil {
		return state.Inspection{}, err
	}
	m.publish(ctx, state.TopicAlertSelected, s.Inspection)
	return s.Inspection, nil
}

// DescribeDevice renders the device facts embedded in the prompt.
func DescribeDevice(a models.Asset, found bool) string {
	if !found {
		return UnknownDevice
	}
	return fmt.Sprintf("IP: %s, Modelo: %s, OS: %s, Latência: %dms",
		orNA(a.IP), orNA(a.Model), orNA(a.OS), a.Latency)
}

// BuildPrompt renders the fixed pt-BR instruction for one incident.
func BuildPrompt(message, deviceDetails string) string {
	return fmt.Sprintf(promptTemplate, message, deviceDetails)
}

// RequestDiagnosis asks the collaborator about alert exactly once. It never
// fails: collaborator errors yield a Diagnosis with OK false, FallbackText
// and the cause in Reason. It does not touch state.
func (m *Module) RequestDiagnosis(ctx context.Context, alert models.Alert) models.Diagnosis {
	asset, found := m.state.Snapshot().Asset(alert.DeviceID)
	prompt := BuildPrompt(alert.Message, DescribeDevice(asset, found))

	result := models.Diagnosis{AlertID: alert.ID, RequestedAt: m.now().UTC()}
	fail := func(reason string) models.Diagnosis {
		result.OK = false
		result.Text = FallbackText
		result.Reason = reason
		return result
	}

	if m.provider == nil {
		return fail("diagnostic collaborator not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	resp, err := m.provider.Generate(ctx, prompt, llm.WithTemperature(m.temperature))
	if m.metrics != nil {
		m.metrics.latency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		m.logger.Warn("diagnosis failed",
			zap.String("alert_id", alert.ID),
			zap.String("code", string(llm.Code(err))),
			zap.Error(err),
		)
		return fail(err.Error())
	}
	if resp == nil || resp.Content == "" {
		return fail("empty response from diagnostic collaborator")
	}

	result.OK = true
	result.Text = resp.Content
	result.Model = resp.Model
	return result
}

// Diagnose moves the inspection to id, marks it busy, asks the collaborator
// and stores the outcome as the inspection's analysis. The collaborator call
// is detached from ctx cancellation so that a disconnecting client cannot
// leave the inspection busy; it is still bounded by the diagnosis timeout.
func (m *Module) Diagnose(ctx context.Context, id string) (models.Diagnosis, error) {
	alert, err := m.Get(id)
	if err != nil {
		return models.Diagnosis{}, err
	}
	if _, err := m.state.Dispatch(state.BeginDiagnosis{AlertID: id}); err != nil {
		return models.Diagnosis{}, err
	}
	m.publish(ctx, state.TopicAlertDiagnosisStarted, id)

	result := m.RequestDiagnosis(context.WithoutCancel(ctx), alert)

	if _, err := m.state.Dispatch(state.CompleteDiagnosis{Result: result}); err != nil {
		return models.Diagnosis{}, err
	}
	outcome := outcomeSuccess
	if !result.OK {
		outcome = outcomeFailure
	}
	m.countDiagnosis(outcome)
	m.publish(ctx, state.TopicAlertDiagnosed, result)
	return result, nil
}

// Resolve closes an alert and clears the inspection. Resolving an already
// resolved alert keeps its original resolution time.
func (m *Module) Resolve(ctx context.Context, id string) (models.Alert, error) {
	s, err := m.state.Dispatch(state.ResolveAlert{ID: id, Now: m.now().UTC()})
	if err != nil {
		return models.Alert{}, err
	}
	a, _ := s.Alert(id)
	m.logger.Info("alert resolved", zap.String("alert_id", id))
	m.publish(ctx, state.TopicAlertResolved, a)
	return a, nil
}

func (m *Module) countDiagnosis(outcome string) {
	if m.metrics != nil {
		m.metrics.diagnoses.WithLabelValues(outcome).Inc()
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
