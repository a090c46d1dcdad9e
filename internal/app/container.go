package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nekogravitycat/hotel-booking-backend/internal/api"
	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/config"
	"github.com/nekogravitycat/hotel-booking-backend/internal/event"
	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/validation"
	"github.com/nekogravitycat/hotel-booking-backend/internal/realtime"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
// Exactly one of DBPool and MongoDB is used, chosen by Backend.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Backend      string
	DBPool       *pgxpool.Pool
	MongoDB      *mongo.Database
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	Publisher    event.Publisher
	Hub          *realtime.Hub
	Log          *logrus.Entry
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
}

type repositories struct {
	users    user.Repository
	hotels   hotel.Repository
	rooms    room.Repository
	bookings booking.Repository
	health   api.HealthChecker
}

func newRepositories(cfg Config) (*repositories, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		if cfg.DBPool == nil {
			return nil, fmt.Errorf("postgres backend selected without a pool")
		}
		return &repositories{
			users:    user.NewPgxRepository(cfg.DBPool),
			hotels:   hotel.NewPgxRepository(cfg.DBPool),
			rooms:    room.NewPgxRepository(cfg.DBPool),
			bookings: booking.NewPgxRepository(cfg.DBPool),
			health:   cfg.DBPool.Ping,
		}, nil
	case config.BackendMongo:
		if cfg.MongoDB == nil {
			return nil, fmt.Errorf("mongo backend selected without a database")
		}
		return &repositories{
			users:    user.NewMongoRepository(cfg.MongoDB),
			hotels:   hotel.NewMongoRepository(cfg.MongoDB),
			rooms:    room.NewMongoRepository(cfg.MongoDB),
			bookings: booking.NewMongoRepository(cfg.MongoDB),
			health: func(ctx context.Context) error {
				return cfg.MongoDB.Client().Ping(ctx, nil)
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	repos, err := newRepositories(cfg)
	if err != nil {
		return nil, err
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	validator := validation.New()

	// User Module
	userService := user.NewService(repos.users, passwordHasher, cfg.Log)

	// Hotel Module
	hotelService := hotel.NewService(repos.hotels, validator, cfg.Log)

	// Room Module (room deletion asks the booking store about active stays)
	roomService := room.NewService(repos.rooms, hotelService, repos.bookings, validator, cfg.Log)

	// Booking Module
	bookingService := booking.NewService(repos.bookings, roomService, hotelService, cfg.Publisher, cfg.Log)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		HotelService:   hotelService,
		RoomService:    roomService,
		BookingService: bookingService,
		JWTManager:     jwtManager,
		Hub:            cfg.Hub,
		Health:         repos.health,
		Log:            cfg.Log,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
	}, nil
}
