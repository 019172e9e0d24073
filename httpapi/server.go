package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/lending"
)

const (
	defaultRequestTimeout = 10 * time.Second

	logMsgRequestRejected = "request rejected"
	logMsgRequestFailed   = "request failed"
	logAttrPath           = "path"
	logAttrStatus         = "status"
	logAttrHandlerError   = "error"
)

var (
	// ErrNilLendingService is returned when a nil lending service is supplied.
	ErrNilLendingService = errors.New("lending service must not be nil")

	// ErrNilInventory is returned when a nil inventory is supplied.
	ErrNilInventory = errors.New("inventory must not be nil")

	// ErrNilGraph is returned when a nil graph reader is supplied.
	ErrNilGraph = errors.New("graph must not be nil")

	// ErrInvalidRequestTimeout is returned when a non-positive request timeout is supplied.
	ErrInvalidRequestTimeout = errors.New("request timeout must be positive")
)

// Logger interface for handler logging and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LendingService defines the interface the handlers need from the
// lending coordinator.
type LendingService interface {
	Borrow(ctx context.Context, command lending.BorrowCommand) (core.BorrowingRecord, error)
	Return(ctx context.Context, command lending.ReturnCommand) error
	ResetAllBorrowings(ctx context.Context) error
}

// Inventory defines the keyed CRUD the handlers need from the primary store.
type Inventory interface {
	ListBooks(ctx context.Context) ([]core.Book, error)
	InsertBook(ctx context.Context, book core.Book) error
	DeleteBook(ctx context.Context, bookID string) error
	InsertBorrower(ctx context.Context, email string, password string) error
}

// Graph defines the relationship-store surface exposed by the
// passthrough endpoints. These are reads plus the direct edge writes;
// the mirroring of borrow/return happens in the coordinator, not here.
type Graph interface {
	Books(ctx context.Context) ([]core.Book, error)
	BooksBorrowedBy(ctx context.Context, borrowerEmail string) ([]core.Book, error)
	CreateBorrowedEdge(ctx context.Context, edge core.BorrowedEdge) error
	MarkEdgeReturned(ctx context.Context, borrowerEmail string, bookID string, returnDate core.Date) error
}

// Server holds the handler dependencies and builds the gin router.
type Server struct {
	lendingService LendingService
	inventory      Inventory
	graph          Graph
	logger         Logger
	requestTimeout time.Duration
}

// ServerOption defines a functional option for configuring a Server.
type ServerOption func(*Server) error

// WithServerLogger sets the logger for the Server.
func WithServerLogger(logger Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithRequestTimeout bounds the duration of a single request's store work.
func WithRequestTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) error {
		if timeout <= 0 {
			return ErrInvalidRequestTimeout
		}

		s.requestTimeout = timeout

		return nil
	}
}

// NewServer creates a Server with optional configuration.
func NewServer(lendingService LendingService, inventory Inventory, graph Graph, options ...ServerOption) (*Server, error) {
	if lendingService == nil {
		return nil, ErrNilLendingService
	}

	if inventory == nil {
		return nil, ErrNilInventory
	}

	if graph == nil {
		return nil, ErrNilGraph
	}

	server := &Server{
		lendingService: lendingService,
		inventory:      inventory,
		graph:          graph,
		requestTimeout: defaultRequestTimeout,
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, err
		}
	}

	return server, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/books", s.handleListBooks)
	router.POST("/books", s.handleCreateBook)
	router.DELETE("/books/:id", s.handleDeleteBook)

	router.POST("/borrowers", s.handleRegisterBorrower)

	router.POST("/borrow", s.handleBorrow)
	router.POST("/return", s.handleReturn)
	router.POST("/clear-borrowings", s.handleClearBorrowings)

	router.GET("/graph/books", s.handleGraphBooks)
	router.GET("/graph/borrowed/:email", s.handleGraphBorrowedBy)
	router.POST("/graph/borrow", s.handleGraphBorrow)
	router.POST("/graph/return", s.handleGraphReturn)

	return router
}

func (s *Server) handleListBooks(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	books, err := s.inventory.ListBooks(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (s *Server) handleCreateBook(c *gin.Context) {
	var request createBookRequest
	if err := c.BindJSON(&request); err != nil {
		return // BindJSON already wrote the 400
	}

	book, err := request.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.inventory.InsertBook(ctx, book); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (s *Server) handleDeleteBook(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.inventory.DeleteBook(ctx, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}

func (s *Server) handleRegisterBorrower(c *gin.Context) {
	var request registerBorrowerRequest
	if err := c.BindJSON(&request); err != nil {
		return
	}

	email, password, err := request.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.inventory.InsertBorrower(ctx, email, password); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"email": email})
}

func (s *Server) handleBorrow(c *gin.Context) {
	var request borrowRequest
	if err := c.BindJSON(&request); err != nil {
		return
	}

	command, err := request.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	record, err := s.lendingService.Borrow(ctx, command)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (s *Server) handleReturn(c *gin.Context) {
	var request returnRequest
	if err := c.BindJSON(&request); err != nil {
		return
	}

	command, err := request.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.lendingService.Return(ctx, command); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book returned"})
}

func (s *Server) handleClearBorrowings(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.lendingService.ResetAllBorrowings(ctx); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all borrowings cleared"})
}

func (s *Server) handleGraphBooks(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	books, err := s.graph.Books(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (s *Server) handleGraphBorrowedBy(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	books, err := s.graph.BooksBorrowedBy(ctx, c.Param("email"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

// handleGraphBorrow writes a BORROWED edge directly, bypassing the
// ledger. The graph stays non-authoritative, so this endpoint carries no
// legality checks beyond field presence.
func (s *Server) handleGraphBorrow(c *gin.Context) {
	var request borrowRequest
	if err := c.BindJSON(&request); err != nil {
		return
	}

	command, err := request.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	edge := core.BorrowedEdge{
		BorrowerEmail: command.BorrowerEmail,
		BookID:        command.BookID,
		StartDate:     command.StartDate,
		ReturnDate:    command.ReturnDate,
	}
	if err := s.graph.CreateBorrowedEdge(ctx, edge); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, edge)
}

func (s *Server) handleGraphReturn(c *gin.Context) {
	var request borrowRequest
	if err := c.BindJSON(&request); err != nil {
		return
	}

	if request.BookID == nil || *request.BookID == "" {
		s.respondError(c, missingField("book_id"))
		return
	}

	if request.BorrowerEmail == nil || *request.BorrowerEmail == "" {
		s.respondError(c, missingField("borrower_email"))
		return
	}

	if request.ReturnDate == nil {
		s.respondError(c, missingField("return_date"))
		return
	}

	returnDate, err := core.ParseDate(*request.ReturnDate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.graph.MarkEdgeReturned(ctx, *request.BorrowerEmail, *request.BookID, returnDate); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "edge marked returned"})
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.requestTimeout)
}

// respondError maps a domain error to a status code. Book-not-found on
// the borrow path is the only 404; every other validation error is a
// 400 and everything else a 500.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusForError(err)

	if status >= http.StatusInternalServerError {
		s.logErr(logMsgRequestFailed, logAttrPath, c.FullPath(), logAttrStatus, status, logAttrHandlerError, err.Error())
	} else {
		s.logDebug(logMsgRequestRejected, logAttrPath, c.FullPath(), logAttrStatus, status, logAttrHandlerError, err.Error())
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrBookNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrMissingField), core.IsValidation(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Server) logErr(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
