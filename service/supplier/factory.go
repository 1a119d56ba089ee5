package supplier

import (
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tiresync/config"
	"tiresync/core/cache"
	"tiresync/core/events"
	"tiresync/core/lock"
	inventoryRepo "tiresync/model/repository/inventory"
	supplierRepo "tiresync/model/repository/supplier"
)

var (
	publisherOnce sync.Once
	publisher     events.Publisher

	lockerOnce sync.Once
	locker     lock.Locker
)

// OptionsFromConfig maps config.AppConfig.Sync onto engine options.
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		FetchTimeout:      c.Sync.FetchTimeout,
		UserAgent:         c.Sync.UserAgent,
		DeleteBatchSize:   c.Sync.DeleteBatchSize,
		UpsertBatchSize:   c.Sync.UpsertBatchSize,
		ProgressThreshold: c.Sync.ProgressThreshold,
		StaleAfter:        c.Sync.StaleAfter,
	}
}

// FromConfig wires a Service from the global config: gorm repositories, Redis
// locks when Redis is up, AMQP events when AMQP_URL is set. Every Service built
// here shares one locker and one publisher.
func FromConfig(db *gorm.DB) *Service {
	app := config.App()
	log := config.Log().Named("supplier-sync")

	svc := NewService(Deps{
		Sources:   supplierRepo.NewSupplierRepository(db),
		Inventory: inventoryRepo.NewInventoryRepository(db),
		Locker:    sharedLocker(),
		Publisher: sharedPublisher(app.Events, log),
		Cache:     cache.GetInstance(),
		Logger:    log,
	}, OptionsFromConfig(app))

	del, ups := svc.executor.BatchSizes()
	if del < app.Sync.DeleteBatchSize || ups < app.Sync.UpsertBatchSize {
		log.Warn("batch sizes clamped to store parameter limit",
			zap.String("dialect", db.Dialector.Name()),
			zap.Int("delete_batch", del),
			zap.Int("upsert_batch", ups))
	}
	return svc
}

func sharedLocker() lock.Locker {
	lockerOnce.Do(func() {
		locker = lock.NewLocal()
		if config.RedisClient != nil {
			locker = lock.NewRedis(config.RedisClient)
		}
	})
	return locker
}

func sharedPublisher(c config.EventsConfig, log *zap.Logger) events.Publisher {
	publisherOnce.Do(func() {
		publisher = events.Nop{}
		if c.AMQPURL == "" {
			return
		}
		p, err := events.NewRabbitPublisher(c.AMQPURL, c.Exchange)
		if err != nil {
			log.Warn("sync events disabled", zap.Error(err))
			return
		}
		publisher = p
	})
	return publisher
}
