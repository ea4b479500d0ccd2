// ABOUTME: Best-effort CloudWatch metrics for chat and indexing operations
// ABOUTME: Emission failures are logged and never fail the request
package metrics

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultNamespace groups the product's metrics in CloudWatch.
const DefaultNamespace = "DocChat"

// CloudWatchAPI is the slice of the CloudWatch client the emitter uses.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Emitter publishes metrics. A nil *Emitter is a no-op, so callers never
// branch on whether metrics are configured.
type Emitter struct {
	client    CloudWatchAPI
	namespace string
}

// NewEmitter creates an Emitter. Empty namespace uses DefaultNamespace.
func NewEmitter(client CloudWatchAPI, namespace string) *Emitter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Emitter{client: client, namespace: namespace}
}

// Count publishes a unitless counter metric.
func (e *Emitter) Count(ctx context.Context, name string, value float64, dims map[string]string) {
	e.put(ctx, name, value, cwtypes.StandardUnitCount, dims)
}

// Duration publishes a latency metric in milliseconds.
func (e *Emitter) Duration(ctx context.Context, name string, d time.Duration, dims map[string]string) {
	e.put(ctx, name, float64(d.Milliseconds()), cwtypes.StandardUnitMilliseconds, dims)
}

func (e *Emitter) put(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit, dims map[string]string) {
	if e == nil || e.client == nil {
		return
	}

	datum := cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions(dims),
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(e.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		log.Printf("metrics: failed to publish %s: %v", name, err)
	}
}

func dimensions(dims map[string]string) []cwtypes.Dimension {
	if len(dims) == 0 {
		return nil
	}
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]cwtypes.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, cwtypes.Dimension{Name: aws.String(name), Value: aws.String(dims[name])})
	}
	return out
}
