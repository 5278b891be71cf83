package core

import (
	"context"
	"sync/atomic"
	"time"
)

// HealthReminders are the counter-staff reminders shown in rotation.
var HealthReminders = []string{
	"Cuidar da saúde do cliente é o nosso maior compromisso diário.",
	"A orientação correta salva vidas. Seja sempre técnico, preciso e humano.",
	"Um atendimento com empatia faz toda a diferença no sucesso do tratamento.",
	"Confira sempre a posologia; a segurança do paciente vem sempre em primeiro lugar.",
	"Medicamento é coisa séria. Transmita confiança, calma e conhecimento.",
	"Nosso conhecimento é a melhor ferramenta para o bem-estar da nossa comunidade.",
	"Sorriso no rosto e precisão técnica: a fórmula ideal do bom balconista.",
	"Atenção total às contraindicações. Proteção é a nossa prioridade absoluta.",
	"Excelência farmacêutica é garantir que o cliente saia com saúde e segurança.",
	"Trabalhamos para que cada cliente sinta-se acolhido, respeitado e bem orientado.",
}

// ReminderRotator advances through HealthReminders on a fixed interval.
type ReminderRotator struct {
	interval time.Duration
	idx      atomic.Int64
}

// NewReminderRotator returns a rotator; non-positive intervals mean one minute.
func NewReminderRotator(interval time.Duration) *ReminderRotator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderRotator{interval: interval}
}

// Current returns the reminder being shown.
func (r *ReminderRotator) Current() string {
	n := int64(len(HealthReminders))
	return HealthReminders[r.idx.Load()%n]
}

// Advance moves to the next reminder, wrapping around.
func (r *ReminderRotator) Advance() string {
	n := int64(len(HealthReminders))
	for {
		cur := r.idx.Load()
		next := (cur + 1) % n
		if r.idx.CompareAndSwap(cur, next) {
			return HealthReminders[next]
		}
	}
}

// Run advances on every tick until ctx is done.
func (r *ReminderRotator) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Advance()
		}
	}
}
