package service

type Service struct {
	NotificatorService NotificatorServiceInterface
}

func New(source DeliverySource, queue string) *Service {
	return &Service{NotificatorService: NewNotificatorService(source, queue)}
}
