package graphstore

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/samber/lo"

	"github.com/Emin3mUI/library-management-task/core"
)

const (
	logMsgCypherExecuted = "executed cypher for: "
	logAttrError         = "error"
	logAttrDurationMS    = "duration_ms"

	cypherCreateBorrowedEdge = `
		MERGE (p:Borrower {email: $email})
		MERGE (b:Book {book_id: $book_id})
		CREATE (p)-[:BORROWED {
			start_date: $start_date,
			return_date: $return_date,
			is_returned: false
		}]->(b)`

	cypherMarkEdgeReturned = `
		MATCH (p:Borrower {email: $email})-[r:BORROWED]->(b:Book {book_id: $book_id})
		SET r.is_returned = true, r.return_date = $return_date`

	cypherDeleteAllBorrowedEdges = `
		MATCH (:Borrower)-[r:BORROWED]->(:Book)
		DELETE r`

	cypherAllBooks = `
		MATCH (b:Book)
		RETURN b
		ORDER BY b.book_id`

	cypherBooksBorrowedBy = `
		MATCH (p:Borrower {email: $email})-[:BORROWED]->(b:Book)
		RETURN b
		ORDER BY b.book_id`
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNilDriver is returned when a nil neo4j driver is supplied to New.
var ErrNilDriver = errors.New("neo4j driver must not be nil")

// Logger interface for cypher logging and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store is the Neo4j relationship store. It is safe for concurrent use;
// sessions are created per operation on the shared driver.
type Store struct {
	driver       neo4j.DriverWithContext
	databaseName string
	logger       Logger
}

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithDatabaseName selects a Neo4j database other than the driver default.
func WithDatabaseName(name string) Option {
	return func(s *Store) error {
		s.databaseName = name
		return nil
	}
}

// WithLogger sets the logger for the Store.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// New creates a relationship store on top of an existing driver with
// optional configuration. The caller keeps ownership of the driver and is
// responsible for closing it on shutdown.
func New(driver neo4j.DriverWithContext, options ...Option) (*Store, error) {
	if driver == nil {
		return nil, ErrNilDriver
	}

	store := &Store{driver: driver}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// CreateBorrowedEdge mirrors a fresh borrowing as a BORROWED relationship.
// Borrower and Book nodes are merged into existence so a lagging node
// import can never fail the mirror write.
func (s *Store) CreateBorrowedEdge(ctx context.Context, edge core.BorrowedEdge) error {
	return s.write(ctx, "create borrowed edge", cypherCreateBorrowedEdge, map[string]any{
		"email":       edge.BorrowerEmail,
		"book_id":     edge.BookID,
		"start_date":  edge.StartDate.String(),
		"return_date": edge.ReturnDate.String(),
	})
}

// MarkEdgeReturned closes the BORROWED relationship matched by borrower
// and book. The edge carries no independent key, so all edges of that
// pair are updated, matching the ledger's book-level return semantics.
func (s *Store) MarkEdgeReturned(ctx context.Context, borrowerEmail string, bookID string, returnDate core.Date) error {
	return s.write(ctx, "mark edge returned", cypherMarkEdgeReturned, map[string]any{
		"email":       borrowerEmail,
		"book_id":     bookID,
		"return_date": returnDate.String(),
	})
}

// DeleteAllBorrowedEdges wipes every BORROWED relationship from the graph.
func (s *Store) DeleteAllBorrowedEdges(ctx context.Context) error {
	return s.write(ctx, "delete all borrowed edges", cypherDeleteAllBorrowedEdges, nil)
}

// Books returns all Book nodes known to the graph.
func (s *Store) Books(ctx context.Context) ([]core.Book, error) {
	return s.readBooks(ctx, "all graph books", cypherAllBooks, nil)
}

// BooksBorrowedBy returns the books connected to a borrower via a
// BORROWED relationship.
func (s *Store) BooksBorrowedBy(ctx context.Context, borrowerEmail string) ([]core.Book, error) {
	return s.readBooks(ctx, "graph books borrowed by", cypherBooksBorrowedBy, map[string]any{
		"email": borrowerEmail,
	})
}

func (s *Store) write(ctx context.Context, action string, cypher string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.databaseName})
	defer s.closeSession(ctx, session)

	start := time.Now()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})

	s.logCypherWithDuration(action, time.Since(start))

	if err != nil {
		s.logError(logMsgCypherExecuted+action, logAttrError, err.Error())
		return err
	}

	return nil
}

func (s *Store) readBooks(ctx context.Context, action string, cypher string, params map[string]any) ([]core.Book, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.databaseName})
	defer s.closeSession(ctx, session)

	start := time.Now()

	collected, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, runErr := tx.Run(ctx, cypher, params)
		if runErr != nil {
			return nil, runErr
		}

		return result.Collect(ctx)
	})

	s.logCypherWithDuration(action, time.Since(start))

	if err != nil {
		s.logError(logMsgCypherExecuted+action, logAttrError, err.Error())
		return nil, err
	}

	records, _ := collected.([]*neo4j.Record)

	books := lo.FilterMap(records, func(record *neo4j.Record, _ int) (core.Book, bool) {
		return bookFromRecord(record)
	})

	return books, nil
}

// bookFromRecord decodes the node bound to "b" into a core.Book via its
// property map.
func bookFromRecord(record *neo4j.Record) (core.Book, bool) {
	value, found := record.Get("b")
	if !found {
		return core.Book{}, false
	}

	node, isNode := value.(neo4j.Node)
	if !isNode {
		return core.Book{}, false
	}

	props, marshalErr := json.Marshal(node.Props)
	if marshalErr != nil {
		return core.Book{}, false
	}

	var book core.Book
	if unmarshalErr := json.Unmarshal(props, &book); unmarshalErr != nil {
		return core.Book{}, false
	}

	return book, true
}

func (s *Store) closeSession(ctx context.Context, session neo4j.SessionWithContext) {
	if closeErr := session.Close(ctx); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn("failed to close neo4j session", logAttrError, closeErr.Error())
		}
	}
}

func (s *Store) logCypherWithDuration(action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgCypherExecuted+action, logAttrDurationMS, duration.Milliseconds())
	}
}

func (s *Store) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
