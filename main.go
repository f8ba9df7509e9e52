package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"minutemind/api"
	"minutemind/catalog"
	"minutemind/config"
	"minutemind/images"
	"minutemind/kafka"
	"minutemind/publish"
	"minutemind/script"
	"minutemind/storage"
	"minutemind/video"
	"minutemind/voice"
)

func main() {
	_ = godotenv.Load()

	kafkaMode := flag.Bool("kafka", false, "Consume render jobs from Kafka instead of serving HTTP")
	addr := flag.String("port", ":8080", "HTTP listen address")
	flag.Parse()

	settings := config.Load()

	store, err := storage.New(settings)
	if err != nil {
		log.Fatalf("storage configuration: %v", err)
	}

	scripts := script.New(settings)
	voices := voice.New(settings, store)
	imageGen := images.New(settings, store)
	compositor := video.New(settings, store)
	cat := catalog.New(store)

	var publisher *publish.Publisher
	if settings.YouTubeServiceAccount != "" {
		p, err := publish.New(context.Background(), settings.YouTubeServiceAccount)
		if err != nil {
			log.Printf("YouTube publishing disabled: %v", err)
		} else {
			publisher = p
			log.Println("YouTube publishing enabled")
		}
	}

	if *kafkaMode {
		log.Println("Running in Kafka render-consumer mode")
		err := kafka.RunWithGracefulShutdown(kafka.ConsumerConfig{
			Brokers:  settings.KafkaBrokers,
			Topic:    settings.KafkaTopic,
			GroupID:  settings.KafkaGroupID,
			Renderer: compositor,
		})
		if err != nil {
			log.Fatalf("Kafka consumer failed: %v", err)
		}
		return
	}

	server := api.NewServer(settings, store, scripts, voices, imageGen, compositor, cat, publisher)

	log.Printf("Listening on %s", *addr)
	if err := server.Router().Run(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
