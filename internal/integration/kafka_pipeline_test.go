//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/travel-trends-collector/internal/adapter/csvout"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/geocsv"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/kafka"
	"github.com/couchcryptid/travel-trends-collector/internal/collector"
	"github.com/couchcryptid/travel-trends-collector/internal/config"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-travel-trend-rows"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("travel-trends-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// syntheticWeather returns the same mild series for every query.
type syntheticWeather struct{}

func (syntheticWeather) Daily(context.Context, domain.WeatherQuery) (domain.DailySeries, error) {
	s := []float64{2, 4}
	return domain.DailySeries{Precipitation: s, Temperature: s, Daylight: s, WindSpeed: s}, nil
}

// syntheticTrends scores by keyword length so rows differ.
type syntheticTrends struct{}

func (syntheticTrends) Interest(_ context.Context, q domain.TrendQuery) ([]domain.RegionalInterest, error) {
	return []domain.RegionalInterest{{Location: "x", Value: float64(10 * len(q.Keyword))}}, nil
}

// TestCollectAndPublish runs a collection over a two-country catalog and
// verifies every row arrives on the topic with its key and headers.
func TestCollectAndPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cat, err := domain.NewCatalog([]domain.Country{
		{
			Name: "Japan", GeoCode: "JP",
			Seasons: domain.Calendar{
				{Name: "spring", Start: domain.NewDate(2024, time.March, 20), Days: 93},
				{Name: "autumn", Start: domain.NewDate(2024, time.September, 22), Days: 90},
			},
			Regions: []string{"Kyoto"},
		},
		{
			Name: "Kenya", GeoCode: "KE",
			Seasons: domain.Calendar{
				{Name: "long rains", Start: domain.NewDate(2024, time.March, 1), Days: 92},
				{Name: "dry", Start: domain.NewDate(2024, time.June, 1), Days: 273},
			},
			Regions: []string{"Nairobi"},
		},
	}, []string{"temples", "safari"})
	require.NoError(t, err)

	geocoder := geocsv.New([]geocsv.Place{
		{Name: "Kyoto", CountryCode: "JP", Coordinates: domain.Coordinates{Lat: 35.01, Lon: 135.77}},
		{Name: "Nairobi", CountryCode: "KE", Coordinates: domain.Coordinates{Lat: -1.29, Lon: 36.82}},
	})

	metrics := observability.NewMetricsForTesting()
	c := collector.New(cat, geocoder, syntheticWeather{}, syntheticTrends{}, collector.Policy{MaxFailures: 20}, discardLogger(), metrics)
	res, err := c.Run(ctx)
	require.NoError(t, err)
	require.Len(t, res.Rows, 8)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger(), metrics)
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.Publish(ctx, res.RunID, res.FinishedAt, res.Rows))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	want := make(map[string]domain.CollectedRow, len(res.Rows))
	for _, row := range res.Rows {
		want[row.Key()] = row
	}

	for range res.Rows {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from topic")

		var got domain.CollectedRow
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, want[string(msg.Key)], got)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, res.RunID, headers["run_id"])
		_, err = time.Parse(time.RFC3339, headers["collected_at"])
		assert.NoError(t, err, "collected_at should be valid RFC3339")
		delete(want, string(msg.Key))
	}
	assert.Empty(t, want, "every row published exactly once")

	// The same rows round-trip through the CSV table.
	path := t.TempDir() + "/scoring_dataset.csv"
	require.NoError(t, csvout.WriteFile(path, res.Rows))
	fromFile, err := csvout.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Rows, fromFile)
}
