package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz attempts started, by mode",
		},
		[]string{"mode"},
	)

	SessionsFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_finished_total",
			Help: "Exam attempts that reached results",
		},
	)

	AnswersRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_recorded_total",
			Help: "Answer records, by outcome",
		},
		[]string{"outcome"},
	)

	AnswerTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_answer_time_seconds",
			Help:    "Recorded time taken per question",
			Buckets: []float64{0, 5, 15, 30, 60, 90, 120},
		},
	)

	Generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generations_total",
			Help: "Quiz generation requests, by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SessionsStarted, SessionsFinished, AnswersRecorded, AnswerTime, Generations)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
