// Package metrics publishes election counters to Amazon CloudWatch.
// file: metrics/metrics.go
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"school-vote/logger"
)

// Publisher records election events. Implementations never fail the caller.
type Publisher interface {
	VoteCast(option string)
	DuplicateVote()
	VotesReset(count int)
}

// NopPublisher discards everything.
type NopPublisher struct{}

func (NopPublisher) VoteCast(string) {}
func (NopPublisher) DuplicateVote()  {}
func (NopPublisher) VotesReset(int)  {}

// PutMetricDataAPI is the CloudWatch call the publisher needs.
type PutMetricDataAPI interface {
	PutMetricDataWithContext(aws.Context, *cloudwatch.PutMetricDataInput, ...request.Option) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher pushes one datum per event under Namespace. Each
// push runs in its own goroutine so callers never wait on CloudWatch.
type CloudWatchPublisher struct {
	client    PutMetricDataAPI
	namespace string
	timeout   time.Duration

	wg sync.WaitGroup
}

// NewCloudWatchPublisher builds a publisher with its own AWS session.
func NewCloudWatchPublisher(region, namespace string) (*CloudWatchPublisher, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewCloudWatchPublisherWithClient(cloudwatch.New(sess), namespace), nil
}

// NewCloudWatchPublisherWithClient uses an existing client.
func NewCloudWatchPublisherWithClient(client PutMetricDataAPI, namespace string) *CloudWatchPublisher {
	return &CloudWatchPublisher{client: client, namespace: namespace, timeout: 5 * time.Second}
}

// VoteCast counts one accepted vote for option
func (p *CloudWatchPublisher) VoteCast(option string) {
	p.putMetric("VotesCast", 1, cloudwatch.StandardUnitCount, &cloudwatch.Dimension{
		Name:  aws.String("Option"),
		Value: aws.String(option),
	})
}

// DuplicateVote counts a rejected second vote
func (p *CloudWatchPublisher) DuplicateVote() {
	p.putMetric("DuplicateVoteAttempts", 1, cloudwatch.StandardUnitCount, nil)
}

// VotesReset records how many votes a reset removed
func (p *CloudWatchPublisher) VotesReset(count int) {
	p.putMetric("VotesReset", float64(count), cloudwatch.StandardUnitCount, nil)
}

// Flush waits for in-flight pushes. Call it before the process exits.
func (p *CloudWatchPublisher) Flush() {
	p.wg.Wait()
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func (p *CloudWatchPublisher) putMetric(name string, value float64, unit string, dim *cloudwatch.Dimension) {
	at := time.Now()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.send(name, value, unit, dim, at)
	}()
}

func (p *CloudWatchPublisher) send(name string, value float64, unit string, dim *cloudwatch.Dimension, at time.Time) {
	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  aws.Time(at),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
	if dim != nil {
		datum.Dimensions = []*cloudwatch.Dimension{dim}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: []*cloudwatch.MetricDatum{datum},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", name, err)
	}
}
