package httpapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/httpapi"
	"github.com/Emin3mUI/library-management-task/lending"
	"github.com/Emin3mUI/library-management-task/testutil"
)

const (
	testBookID        = "978-0134190440"
	testBorrowerEmail = "reader@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testHarness struct {
	router    *gin.Engine
	inventory *testutil.FakeInventoryStore
	graph     *testutil.FakeGraphStore
}

func newTestHarness(t *testing.T) testHarness {
	t.Helper()

	inventory := testutil.NewFakeInventoryStore()
	graph := testutil.NewFakeGraphStore()

	mirror, err := lending.NewMirrorer(graph,
		lending.WithMirrorRetryOptions(
			lending.WithMaxAttempts(2),
			lending.WithBaseDelay(time.Millisecond),
		),
	)
	require.NoError(t, err)

	mirror.Start()
	t.Cleanup(mirror.Close)

	today, err := core.ParseDate("2026-08-30")
	require.NoError(t, err)

	coordinator, err := lending.NewCoordinator(inventory, mirror,
		lending.WithClock(func() core.Date { return today }),
	)
	require.NoError(t, err)

	server, err := httpapi.NewServer(coordinator, inventory, graph)
	require.NoError(t, err)

	return testHarness{router: server.Router(), inventory: inventory, graph: graph}
}

func (h testHarness) perform(t *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)

	return recorder
}

func availableBook() core.Book {
	return core.Book{
		BookID:    testBookID,
		Title:     "The Go Programming Language",
		Author:    "Donovan/Kernighan",
		Genre:     "Programming",
		Publisher: "Addison-Wesley",
		Quantity:  1,
		Available: true,
		Place:     "Shelf 3",
	}
}

func bookPayload() map[string]any {
	return map[string]any{
		"book_id":   testBookID,
		"title":     "The Go Programming Language",
		"author":    "Donovan/Kernighan",
		"genre":     "Programming",
		"publisher": "Addison-Wesley",
		"quantity":  1,
		"available": true,
		"place":     "Shelf 3",
	}
}

func borrowPayload() map[string]any {
	return map[string]any{
		"book_id":        testBookID,
		"borrower_email": testBorrowerEmail,
		"start_date":     "2026-09-01",
		"return_date":    "2026-09-15",
	}
}

func Test_ListBooks_ReturnsAllBooks(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBook(availableBook())

	// act
	recorder := harness.perform(t, http.MethodGet, "/books", nil)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)

	var books []core.Book
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, testBookID, books[0].BookID)
}

func Test_CreateBook_Succeeds(t *testing.T) {
	// arrange
	harness := newTestHarness(t)

	// act
	recorder := harness.perform(t, http.MethodPost, "/books", bookPayload())

	// assert
	assert.Equal(t, http.StatusCreated, recorder.Code)

	book, found := harness.inventory.Book(testBookID)
	require.True(t, found)
	assert.Equal(t, "The Go Programming Language", book.Title)
}

func Test_CreateBook_RejectsMissingField(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	payload := bookPayload()
	delete(payload, "title")

	// act
	recorder := harness.perform(t, http.MethodPost, "/books", payload)

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "title")
}

func Test_CreateBook_RejectsDuplicateID(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBook(availableBook())

	// act
	recorder := harness.perform(t, http.MethodPost, "/books", bookPayload())

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_DeleteBook_Succeeds(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBook(availableBook())

	// act
	recorder := harness.perform(t, http.MethodDelete, "/books/"+testBookID, nil)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)

	_, found := harness.inventory.Book(testBookID)
	assert.False(t, found)
}

func Test_RegisterBorrower_Succeeds(t *testing.T) {
	// arrange
	harness := newTestHarness(t)

	// act
	recorder := harness.perform(t, http.MethodPost, "/borrowers", map[string]any{
		"email":    testBorrowerEmail,
		"password": "secret",
	})

	// assert
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func Test_RegisterBorrower_RejectsMissingPassword(t *testing.T) {
	// arrange
	harness := newTestHarness(t)

	// act
	recorder := harness.perform(t, http.MethodPost, "/borrowers", map[string]any{
		"email": testBorrowerEmail,
	})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_RegisterBorrower_RejectsDuplicateEmail(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBorrower(testBorrowerEmail, "secret")

	// act
	recorder := harness.perform(t, http.MethodPost, "/borrowers", map[string]any{
		"email":    testBorrowerEmail,
		"password": "secret",
	})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_Borrow_ReturnsCreatedRecord(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBorrower(testBorrowerEmail, "secret")
	harness.inventory.SeedBook(availableBook())

	// act
	recorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())

	// assert
	require.Equal(t, http.StatusCreated, recorder.Code)

	var record core.BorrowingRecord
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &record))
	assert.Equal(t, testBookID, record.BookID)
	assert.Equal(t, testBorrowerEmail, record.BorrowerEmail)
	assert.Equal(t, "2026-09-01", record.StartDate.String())
	assert.False(t, record.IsReturned)
}

func Test_Borrow_MapsBookNotFoundTo404(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBorrower(testBorrowerEmail, "secret")

	// act
	recorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_Borrow_MapsValidationErrorsTo400(t *testing.T) {
	harness := newTestHarness(t)
	harness.inventory.SeedBook(availableBook())

	t.Run("unknown borrower", func(t *testing.T) {
		recorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("malformed start date", func(t *testing.T) {
		payload := borrowPayload()
		payload["start_date"] = "01-09-2026"
		recorder := harness.perform(t, http.MethodPost, "/borrow", payload)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("missing return date", func(t *testing.T) {
		payload := borrowPayload()
		delete(payload, "return_date")
		recorder := harness.perform(t, http.MethodPost, "/borrow", payload)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("book unavailable", func(t *testing.T) {
		harness.inventory.SeedBorrower(testBorrowerEmail, "secret")
		unavailable := availableBook()
		unavailable.Available = false
		harness.inventory.SeedBook(unavailable)

		recorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func Test_Borrow_MapsStoreFaultTo500(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBorrower(testBorrowerEmail, "secret")
	harness.inventory.SeedBook(availableBook())
	harness.inventory.FailTransactionsWith(errors.Join(core.ErrStoreUnavailable, errors.New("connection refused")))

	// act
	recorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())

	// assert
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func Test_Return_Succeeds(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBorrower(testBorrowerEmail, "secret")
	harness.inventory.SeedBook(availableBook())

	borrowRecorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())
	require.Equal(t, http.StatusCreated, borrowRecorder.Code)

	// act
	recorder := harness.perform(t, http.MethodPost, "/return", map[string]any{
		"book_id":     testBookID,
		"return_date": "2026-09-10",
	})

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)

	book, found := harness.inventory.Book(testBookID)
	require.True(t, found)
	assert.True(t, book.Available)
}

func Test_Return_MapsNoActiveBorrowTo400(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBook(availableBook())

	// act
	recorder := harness.perform(t, http.MethodPost, "/return", map[string]any{
		"book_id":     testBookID,
		"return_date": "2026-09-10",
	})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_ClearBorrowings_Succeeds(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.SeedBorrower(testBorrowerEmail, "secret")
	harness.inventory.SeedBook(availableBook())

	borrowRecorder := harness.perform(t, http.MethodPost, "/borrow", borrowPayload())
	require.Equal(t, http.StatusCreated, borrowRecorder.Code)

	// act
	recorder := harness.perform(t, http.MethodPost, "/clear-borrowings", nil)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, harness.inventory.Borrowings())
}

func Test_ClearBorrowings_MapsStoreFaultTo500(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.inventory.FailTransactionsWith(errors.Join(core.ErrStoreUnavailable, errors.New("connection refused")))

	// act
	recorder := harness.perform(t, http.MethodPost, "/clear-borrowings", nil)

	// assert
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func Test_GraphBooks_ReturnsGraphView(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.graph.SeedBooks([]core.Book{availableBook()})

	// act
	recorder := harness.perform(t, http.MethodGet, "/graph/books", nil)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)

	var books []core.Book
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, testBookID, books[0].BookID)
}

func Test_GraphBorrowedBy_ReturnsBorrowerBooks(t *testing.T) {
	// arrange
	harness := newTestHarness(t)
	harness.graph.SeedBorrowed(testBorrowerEmail, []core.Book{availableBook()})

	// act
	recorder := harness.perform(t, http.MethodGet, "/graph/borrowed/"+testBorrowerEmail, nil)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)

	var books []core.Book
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &books))
	require.Len(t, books, 1)
}

func Test_GraphBorrow_CreatesEdgeDirectly(t *testing.T) {
	// arrange
	harness := newTestHarness(t)

	// act
	recorder := harness.perform(t, http.MethodPost, "/graph/borrow", borrowPayload())

	// assert
	assert.Equal(t, http.StatusCreated, recorder.Code)

	edges := harness.graph.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, testBorrowerEmail, edges[0].BorrowerEmail)
	assert.Equal(t, testBookID, edges[0].BookID)
}

func Test_GraphReturn_MarksEdgeDirectly(t *testing.T) {
	// arrange
	harness := newTestHarness(t)

	// act
	recorder := harness.perform(t, http.MethodPost, "/graph/return", map[string]any{
		"book_id":        testBookID,
		"borrower_email": testBorrowerEmail,
		"return_date":    "2026-09-10",
	})

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)

	marks := harness.graph.ReturnedMarks()
	require.Len(t, marks, 1)
	assert.Equal(t, testBookID, marks[0].BookID)
}

func Test_NewServer_FailsWithNilDependencies(t *testing.T) {
	inventory := testutil.NewFakeInventoryStore()
	graph := testutil.NewFakeGraphStore()

	mirror, err := lending.NewMirrorer(graph)
	require.NoError(t, err)

	coordinator, err := lending.NewCoordinator(inventory, mirror)
	require.NoError(t, err)

	_, err = httpapi.NewServer(nil, inventory, graph)
	assert.ErrorIs(t, err, httpapi.ErrNilLendingService)

	_, err = httpapi.NewServer(coordinator, nil, graph)
	assert.ErrorIs(t, err, httpapi.ErrNilInventory)

	_, err = httpapi.NewServer(coordinator, inventory, nil)
	assert.ErrorIs(t, err, httpapi.ErrNilGraph)
}
