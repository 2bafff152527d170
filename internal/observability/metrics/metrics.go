package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                           sync.Once
	registerOnce                   sync.Once
	metricsRouter                  *chi.Mux
	suiClientLatency               *prometheus.HistogramVec
	clientRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram        *prometheus.HistogramVec
	dbLatency                      *prometheus.HistogramVec
	processedTxCounter             *prometheus.CounterVec
	alertsCounter                  *prometheus.CounterVec
	pageFetchErrorCounter          *prometheus.CounterVec
	queuePublishErrorCounter       prometheus.Counter
	activeSessionsGauge            prometheus.Gauge
	priceGauge                     prometheus.Gauge
	priceFallbackCounter           *prometheus.CounterVec
	netStakedGauge                 prometheus.Gauge
	netStakedFiatGauge             prometheus.Gauge
)

func init() {
	// collectors must exist before Init so that code paths running without a
	// metrics server (CLI commands, tests) can record safely
	registerMetrics()
}

// Init starts the metrics server on the given port. Extra routes, such as the
// ops API, can be mounted on the same router.
func Init(metricsPort int, mount ...func(r chi.Router)) {
	once.Do(func() {
		initMetricsRouter(metricsPort, mount...)
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int, mount ...func(r chi.Router)) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	for _, m := range mount {
		m(metricsRouter)
	}

	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	registerOnce.Do(func() {
		defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

		// client requests are the ones sending to other service
		clientRequestDurationHistogram = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "client_request_duration_seconds",
				Help:    "Histogram of outgoing client request durations in seconds.",
				Buckets: defaultHistogramBucketsSeconds,
			},
			[]string{"baseurl", "method", "path", "status"},
		)

		suiClientLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sui_client_latency_seconds",
				Help:    "Histogram of sui rpc client durations in seconds.",
				Buckets: defaultHistogramBucketsSeconds,
			},
			[]string{"method", "status"},
		)

		pollerDurationHistogram = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "poller_duration_seconds",
				Help:    "Histogram of poller durations in seconds.",
				Buckets: append(defaultHistogramBucketsSeconds, 60, 300),
			},
			[]string{"type", "status"},
		)

		dbLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "db_latency_seconds",
				Help: "DB latency in seconds splitted by method and execution status",
			},
			[]string{"method", "status"},
		)

		processedTxCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "processed_tx_count",
				Help: "Number of new staking transactions processed, by function and outcome",
			},
			[]string{"function", "outcome"},
		)

		alertsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alert_count",
				Help: "Number of alerts by function and delivery status",
			},
			[]string{"function", "status"},
		)

		pageFetchErrorCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_fetch_error_count",
				Help: "Number of failed page fetches by stream",
			},
			[]string{"stream"},
		)

		queuePublishErrorCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "queue_publish_error_count",
				Help: "The total number of errors when publishing alert events to the queue",
			},
		)

		activeSessionsGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_sessions",
				Help: "Number of running monitoring sessions",
			},
		)

		priceGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_price",
				Help: "Last token price returned by the price oracle",
			},
		)

		priceFallbackCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "price_fallback_count",
				Help: "Number of price lookups served by a fallback source",
			},
			[]string{"source"},
		)

		netStakedGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "net_staked_tokens",
				Help: "Lifetime deposited minus claimed tokens",
			},
		)

		netStakedFiatGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "net_staked_fiat",
				Help: "Net staked tokens converted to fiat",
			},
		)

		prometheus.MustRegister(
			suiClientLatency,
			clientRequestDurationHistogram,
			pollerDurationHistogram,
			dbLatency,
			processedTxCounter,
			alertsCounter,
			pageFetchErrorCounter,
			queuePublishErrorCounter,
			activeSessionsGauge,
			priceGauge,
			priceFallbackCounter,
			netStakedGauge,
			netStakedFiatGauge,
		)
	})
}

func RecordSuiClientLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	suiClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordProcessedTx(function, outcome string) {
	processedTxCounter.WithLabelValues(function, outcome).Inc()
}

func RecordAlert(function string, delivered bool) {
	status := Success
	if !delivered {
		status = Error
	}

	alertsCounter.WithLabelValues(function, status.String()).Inc()
}

func RecordPageFetchError(stream string) {
	pageFetchErrorCounter.WithLabelValues(stream).Inc()
}

func RecordQueuePublishError() {
	queuePublishErrorCounter.Inc()
}

func RecordActiveSessions(count int) {
	activeSessionsGauge.Set(float64(count))
}

func RecordPrice(price float64) {
	priceGauge.Set(price)
}

func RecordPriceFallback(source string) {
	priceFallbackCounter.WithLabelValues(source).Inc()
}

func RecordNetStaked(tokens, fiat float64) {
	netStakedGauge.Set(tokens)
	netStakedFiatGauge.Set(fiat)
}

// StartClientRequestDurationTimer starts a timer to measure outgoing client request duration.
func StartClientRequestDurationTimer(baseUrl, method, path string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		clientRequestDurationHistogram.WithLabelValues(
			baseUrl,
			method,
			path,
			fmt.Sprintf("%d", statusCode),
		).Observe(duration)
	}
}
