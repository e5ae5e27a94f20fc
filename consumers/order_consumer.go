package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront-orders/config"
	"storefront-orders/models"
	"storefront-orders/rabbitmq"
	"storefront-orders/services"
)

// StartOrderConsumer consumes the order event queue, the confirmation
// queue and the dead-letter queue. Payment checks go through the
// lifecycle service so the transition table and stock rules apply.
func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config, orders *services.OrderService) {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"storefront-orders", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg, orders)
		}
	}()

	confirmations, err := ch.Consume(
		rabbitmq.ConfirmationQueue,
		"storefront-orders-confirmations",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register confirmation consumer: %v", err)
	}

	go func() {
		for msg := range confirmations {
			processConfirmationMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"storefront-orders-dlq",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processOrderMessage(msg amqp.Delivery, orders *services.OrderService) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid event payload: %s", msg.Body)
		msg.Nack(false, false) // reject without requeue, goes to DLQ
		return
	}

	log.Printf("Processing order event: ID=%d, Type=%s", event.OrderID, event.Type)

	switch event.Type {
	case "created", "paid", "status_updated":
		// Nothing to do in-process yet; downstream services consume the
		// same exchange.
	case "payment_check":
		handlePaymentCheck(event.OrderID, orders)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	msg.Ack(false)
}

func processConfirmationMessage(msg amqp.Delivery) {
	var confirmation models.OrderConfirmation
	if err := json.Unmarshal(msg.Body, &confirmation); err != nil {
		log.Printf("Invalid confirmation payload: %s", msg.Body)
		msg.Nack(false, false)
		return
	}

	// Stand-in for the mail sender: the confirmation is logged and acked.
	log.Printf("Sending order confirmation to %s for order %d (total %s)",
		confirmation.Contact, confirmation.OrderID, confirmation.TotalAmount.StringFixed(2))
	msg.Ack(false)
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	msg.Ack(false)
}

// handlePaymentCheck cancels an order that is still Pending when the
// payment window has elapsed.
func handlePaymentCheck(orderID int64, orders *services.OrderService) {
	ctx := context.Background()

	order, err := orders.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return
		}
		log.Printf("Failed to load order %d for payment check: %v", orderID, err)
		return
	}
	if order.Status != models.StatusPending {
		return
	}

	if _, err := orders.UpdateStatus(ctx, orderID, models.StatusCancelled); err != nil {
		var transition *models.InvalidTransitionError
		if errors.As(err, &transition) {
			// Paid between the check and the cancel; leave it alone.
			return
		}
		log.Printf("Failed to auto-cancel order %d: %v", orderID, err)
		return
	}
	log.Printf("Auto-cancelled order %d due to non-payment", orderID)
}
