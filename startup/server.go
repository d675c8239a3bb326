package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casbin/casbin"
	"github.com/gorilla/mux"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/authorization"
	"gastmanager/casbinAuthorization"
	"gastmanager/domain"
	"gastmanager/handlers"
	application "gastmanager/service"
	"gastmanager/startup/config"
	"gastmanager/store"
)

type Server struct {
	config *config.Config
}

var Logger = logrus.New()

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	msg := fmt.Sprintf("[%s] [%s] %s\n",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		entry.Message,
	)

	return []byte(msg), nil
}

func initLogger(logFile string) {
	Logger.SetFormatter(&CustomFormatter{})

	writer, err := rotatelogs.New(
		logFile+"_%Y%m%d",
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		Logger.SetOutput(os.Stdout)
		Logger.Warnf("file logging unavailable, using stdout: %s", err)
		return
	}
	Logger.SetOutput(writer)
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) initMongoClient(ctx context.Context) *mongo.Client {
	client, err := store.GetClient(ctx, server.config.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initUserStore(client *mongo.Client, tracer trace.Tracer) domain.UserStore {
	userStore := store.NewUserMongoDBStore(client, tracer)
	if err := userStore.EnsureIndexes(context.Background()); err != nil {
		Logger.Warnf("user indexes: %s", err)
	}
	return userStore
}

func (server *Server) initAccommodationStore(client *mongo.Client, tracer trace.Tracer) domain.AccommodationStore {
	accommodationStore := store.NewAccommodationMongoDBStore(client, tracer)
	if err := accommodationStore.EnsureIndexes(context.Background()); err != nil {
		Logger.Warnf("accommodation indexes: %s", err)
	}
	return accommodationStore
}

func (server *Server) initGuestStore(client *mongo.Client, tracer trace.Tracer) domain.GuestStore {
	return store.NewGuestMongoDBStore(client, tracer)
}

func (server *Server) initReportCache(tracer trace.Tracer) domain.ReportCache {
	cache := store.NewReportRedisCache(server.config.RedisAddress, Logger, tracer)
	cache.Ping()
	return cache
}

func (server *Server) Start() {
	initLogger(server.config.LogFile)

	ctx := context.Background()
	mongoClient := server.initMongoClient(ctx)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			Logger.Warnf("mongo disconnect: %s", err)
		}
	}(mongoClient, ctx)

	tp := server.initTracerProvider()
	defer func() {
		if sdkProvider, ok := tp.(*sdktrace.TracerProvider); ok {
			_ = sdkProvider.Shutdown(ctx)
		}
	}()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer := tp.Tracer("gastmanager")

	userStore := server.initUserStore(mongoClient, tracer)
	accommodationStore := server.initAccommodationStore(mongoClient, tracer)
	guestStore := server.initGuestStore(mongoClient, tracer)
	reportCache := server.initReportCache(tracer)

	access := authorization.NewAccessControl(userStore, accommodationStore, tracer)

	userService := application.NewUserService(userStore, tracer, Logger)
	accommodationService := application.NewAccommodationService(accommodationStore, guestStore, tracer, Logger)
	guestService := application.NewGuestService(guestStore, accommodationStore, tracer, Logger)
	importService := application.NewImportService(guestStore, accommodationStore, tracer, Logger)
	reportService := application.NewReportService(guestStore, accommodationStore, reportCache, tracer, Logger)

	userHandler := handlers.NewUserHandler(userService, access, tracer, Logger)
	accommodationHandler := handlers.NewAccommodationHandler(accommodationService, access, tracer, Logger)
	guestHandler := handlers.NewGuestHandler(guestService, access, tracer, Logger)
	importHandler := handlers.NewImportHandler(importService, access, server.config.UploadDir, tracer, Logger)
	reportHandler := handlers.NewReportHandler(reportService, access, tracer, Logger)

	server.start(userHandler, accommodationHandler, guestHandler, importHandler, reportHandler)
}

func (server *Server) initTracerProvider() trace.TracerProvider {
	if server.config.JaegerAddress == "" {
		return trace.NewNoopTracerProvider()
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(server.config.JaegerAddress)))
	if err != nil {
		Logger.Warnf("jaeger exporter unavailable, tracing disabled: %s", err)
		return trace.NewNoopTracerProvider()
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("gastmanager"),
		),
	)
	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

func (server *Server) start(
	userHandler *handlers.UserHandler,
	accommodationHandler *handlers.AccommodationHandler,
	guestHandler *handlers.GuestHandler,
	importHandler *handlers.ImportHandler,
	reportHandler *handlers.ReportHandler,
) {
	enforcer, err := casbin.NewEnforcerSafe("./rbac_model.conf", "./policy.csv")
	if err != nil {
		log.Fatal(err)
	}

	router := mux.NewRouter()
	router.Use(handlers.MiddlewareContentTypeSet)
	router.Use(handlers.ExtractTraceInfoMiddleware)
	router.Use(casbinAuthorization.CasbinMiddleware(enforcer, Logger))

	api := router.PathPrefix("/api").Subrouter()
	userHandler.InitPublic(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(authorization.Authenticate(Logger))
	userHandler.Init(protected)
	accommodationHandler.Init(protected)
	guestHandler.Init(protected)
	importHandler.Init(protected)
	reportHandler.Init(protected)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: router,
	}

	wait := time.Second * 15
	go func() {
		Logger.Infof("listening on :%s", server.config.Port)
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}
