package notificator

import (
	"context"

	"jwt-pizza-service/internal/config"
	"jwt-pizza-service/internal/connections/rabbitmq"
	"jwt-pizza-service/internal/microservices/notificator/service"
)

// Start binds the notification queue to the order exchange and consumes it
// until ctx is cancelled.
func Start(ctx context.Context, cfg config.RabbitMQConfig) error {
	client, err := rabbitmq.Dial(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareFanout(cfg.Exchange); err != nil {
		return err
	}
	if err := client.BindQueue(cfg.Queue, cfg.Exchange); err != nil {
		return err
	}

	svc := service.New(client, cfg.Queue)
	return svc.NotificatorService.Notify(ctx)
}
