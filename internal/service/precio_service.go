package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storevision/internal/dto"
	"storevision/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const precioCacheTTL = 4 * time.Hour

// PrecioService serves the public price lookup. Responses are cached in
// Redis by product code; the cache holds display data only and is dropped
// whenever the product's stock changes.
type PrecioService interface {
	ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error)
	Invalidar(ctx context.Context, codigos ...string)
}

type precioService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client // nil disables the cache
}

func NewPrecioService(repo repository.ProductoRepository, rdb *redis.Client) PrecioService {
	return &precioService{repo: repo, rdb: rdb}
}

func precioCacheKey(codigo string) string { return "precio:" + codigo }

func (s *precioService) ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error) {
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, precioCacheKey(codigo)).Bytes(); err == nil {
			var resp dto.ConsultaPreciosResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, codigo)
		}
		return nil, persistencia(err)
	}
	if !p.Activo {
		return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, codigo)
	}

	resp := &dto.ConsultaPreciosResponse{
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		PrecioVenta: p.PrecioVenta,
		Disponible:  p.StockActual > 0,
		Categoria:   p.Categoria,
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			if err := s.rdb.Set(ctx, precioCacheKey(codigo), b, precioCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("codigo", codigo).Msg("precio: cache set failed")
			}
		}
	}
	return resp, nil
}

func (s *precioService) Invalidar(ctx context.Context, codigos ...string) {
	if s.rdb == nil || len(codigos) == 0 {
		return
	}
	keys := make([]string, len(codigos))
	for i, c := range codigos {
		keys[i] = precioCacheKey(c)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("precio: cache invalidation failed")
	}
}
