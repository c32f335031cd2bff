package service

import (
	"context"

	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/healthdatalab/checkout-service/internal/provider"
	"go.uber.org/zap"
)

// seatPageSize размер страницы при переборе завершенных сессий
const seatPageSize = 100

// SeatService считает проданные места акционного потока по истории
// завершенных Checkout-сессий. Перебор всех сессий с запросом позиций
// по каждой приемлем только на малых объемах (десятки сессий).
type SeatService struct {
	provider provider.Provider
	total    int
	priceIDs map[string]struct{}
	log      *zap.Logger
}

// NewSeatService создает новый сервис подсчета мест.
// priceIDs - цены, покупка которых занимает место.
func NewSeatService(p provider.Provider, total int, priceIDs []string, log *zap.Logger) *SeatService {
	allowed := make(map[string]struct{}, len(priceIDs))
	for _, id := range priceIDs {
		allowed[id] = struct{}{}
	}

	return &SeatService{
		provider: p,
		total:    total,
		priceIDs: allowed,
		log:      log,
	}
}

// CountSold перебирает завершенные сессии постранично и считает те,
// где хотя бы одна позиция входит в список акционных цен.
// Remaining никогда не бывает отрицательным.
func (s *SeatService) CountSold(ctx context.Context) (domain.SeatCount, error) {
	sold := 0
	cursor := ""

	for {
		page, err := s.provider.ListCompletedSessions(ctx, cursor, seatPageSize)
		if err != nil {
			return domain.SeatCount{}, err
		}

		for _, sessionID := range page.IDs {
			priceIDs, err := s.provider.ListSessionPriceIDs(ctx, sessionID)
			if err != nil {
				return domain.SeatCount{}, err
			}
			for _, id := range priceIDs {
				if _, ok := s.priceIDs[id]; ok {
					sold++
					break
				}
			}
		}

		if !page.HasMore || len(page.IDs) == 0 {
			break
		}
		cursor = page.IDs[len(page.IDs)-1]
	}

	remaining := s.total - sold
	if remaining < 0 {
		remaining = 0
	}

	s.log.Debug("Seat count computed",
		zap.Int("total", s.total),
		zap.Int("sold", sold),
		zap.Int("remaining", remaining))

	return domain.SeatCount{
		Total:     s.total,
		Sold:      sold,
		Remaining: remaining,
	}, nil
}
