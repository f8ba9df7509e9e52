// Package kafka consumes render jobs from a topic and feeds them to the
// video compositor. A failed render leaves its message unmarked so the
// job is retried on the next claim.
package kafka

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"

	"minutemind/types"
)

// Renderer is the compositor surface the consumer drives.
type Renderer interface {
	Render(ctx context.Context, resp types.ScriptResponse) (*types.VideoMetadata, error)
}

// ConsumerConfig holds the render consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	Renderer Renderer
}

// Consumer reads ScriptResponse jobs from one topic as part of a consumer
// group.
type Consumer struct {
	group  sarama.ConsumerGroup
	config ConsumerConfig
	ready  chan bool
}

// NewConsumer builds a consumer group client for render jobs.
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, config: config, ready: make(chan bool)}, nil
}

// Start begins consuming and returns once the group session is ready.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &renderJobHandler{renderer: c.config.Renderer, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.config.Topic}, handler); err != nil {
				if err == context.Canceled {
					return
				}
				log.Printf("[kafka] consume error: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	log.Printf("[kafka] render consumer started (group: %s, topic: %s)", c.config.GroupID, c.config.Topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("[kafka] consumer error: %v", err)
		}
	}()
	return nil
}

// Close shuts the consumer group down.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// RunWithGracefulShutdown consumes until SIGINT/SIGTERM.
func RunWithGracefulShutdown(config ConsumerConfig) error {
	consumer, err := NewConsumer(config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm
	log.Println("[kafka] shutting down render consumer")

	cancel()
	return consumer.Close()
}

// renderJobHandler implements sarama.ConsumerGroupHandler for render jobs.
type renderJobHandler struct {
	renderer Renderer
	ready    chan bool
}

func (h *renderJobHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *renderJobHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *renderJobHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			h.handle(session, message)
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *renderJobHandler) handle(session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	var job types.ScriptResponse
	if err := json.Unmarshal(message.Value, &job); err != nil {
		log.Printf("[kafka] skipping unparseable render job at offset %d: %v", message.Offset, err)
		session.MarkMessage(message, "")
		return
	}
	if job.Script.ScriptID == "" || len(job.Script.Scenes) == 0 || len(job.Audio) == 0 {
		log.Printf("[kafka] skipping incomplete render job at offset %d", message.Offset)
		session.MarkMessage(message, "")
		return
	}

	meta, err := h.renderer.Render(session.Context(), job)
	if err != nil {
		// Unmarked: the job stays claimable for retry.
		log.Printf("[kafka] render failed for script %s: %v", job.Script.ScriptID, err)
		return
	}

	log.Printf("[kafka] rendered script %s as video %s", job.Script.ScriptID, meta.VideoID)
	session.MarkMessage(message, "")
}
