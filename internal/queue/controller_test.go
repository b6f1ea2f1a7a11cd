package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fjacquet/finsort/internal/flowerror"
	"fjacquet/finsort/internal/ledger"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

var errNetwork = errors.New("connection refused")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	taxonomy     *MockTaxonomy
	recorder     *MockRecorder
	reclassifier *MockReclassifier
	controller   *Controller
	session      *ledger.Session
}

func newFixture(t *testing.T, records []models.TransactionRecord) *fixture {
	t.Helper()
	session, err := ledger.NewSession(records, nil, logging.NewMockLogger())
	require.NoError(t, err)

	f := &fixture{
		taxonomy:     new(MockTaxonomy),
		recorder:     new(MockRecorder),
		reclassifier: new(MockReclassifier),
		session:      session,
	}
	f.controller = NewController(f.taxonomy, f.recorder, f.reclassifier, logging.NewMockLogger())
	return f
}

// mixedLedger has one classified expense, then an unclassified income and
// an unclassified expense; the expense is processed first.
func mixedLedger() []models.TransactionRecord {
	return []models.TransactionRecord{
		{Date: "2024-03-01", Activity: "Landlord SA", Expense: dec("20"), Classification: "Rent"},
		{Date: "2024-03-25", Activity: "ACME payroll", Income: dec("100"), Classification: models.UnclassifiedLabel},
		{Date: "2024-03-27", Activity: "Coop", Expense: dec("50"), Classification: models.UnclassifiedLabel},
	}
}

func labels(records []models.TransactionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Classification
	}
	return out
}

func TestController_FullWorkflow(t *testing.T) {
	f := newFixture(t, mixedLedger())
	ctx := context.Background()

	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food", "Rent"}, nil)
	f.taxonomy.On("Options", mock.Anything, models.Income).Return([]string{"Salary"}, nil)
	f.recorder.On("RecordDecision", mock.Anything, "Food", "Coop", models.Expense).Return(nil).Once()
	f.recorder.On("RecordDecision", mock.Anything, "Salary", "ACME payroll", models.Income).Return(nil).Once()
	echoReclassifier(f.reclassifier).Once()

	require.NoError(t, f.controller.Start(ctx, f.session))
	assert.Equal(t, AwaitingSelection, f.controller.State())
	assert.Equal(t, 2, f.controller.Remaining())
	assert.True(t, f.controller.Classifying())

	current, ok := f.controller.Current()
	require.True(t, ok)
	assert.Equal(t, 2, current.Index)
	assert.Equal(t, models.Expense, current.Direction)
	assert.True(t, dec("50").Equal(current.Amount))
	assert.Equal(t, []string{"Food", "Rent"}, f.controller.Options())

	require.NoError(t, f.controller.SelectLabel("Food"))
	assert.Equal(t, ReadyToCommit, f.controller.State())
	require.NoError(t, f.controller.Commit(ctx))

	assert.Equal(t, 1, f.controller.Remaining())
	current, ok = f.controller.Current()
	require.True(t, ok)
	assert.Equal(t, 1, current.Index)
	assert.Equal(t, models.Income, current.Direction)
	assert.Equal(t, []string{"Salary"}, f.controller.Options())
	_, selected := f.controller.Selection()
	assert.False(t, selected, "selection is cleared for the next item")

	require.NoError(t, f.controller.SelectLabel("Salary"))
	require.NoError(t, f.controller.Commit(ctx))

	assert.Equal(t, Done, f.controller.State())
	assert.True(t, f.controller.FullyClassified())
	assert.False(t, f.controller.Classifying())
	assert.Equal(t, 0, f.controller.Remaining())
	_, ok = f.controller.Current()
	assert.False(t, ok)

	f.reclassifier.AssertNumberOfCalls(t, "ReclassifyAll", 1)
	sent := f.reclassifier.Calls[0].Arguments.Get(1).([]models.TransactionRecord)
	assert.Len(t, sent, 3)
	assert.Equal(t, []string{"Rent", "Salary", "Food"}, labels(sent))
	assert.ElementsMatch(t, []string{"Rent", "Food", "Salary"}, labels(f.session.Records()))

	f.taxonomy.AssertExpectations(t)
	f.recorder.AssertExpectations(t)
}

func TestController_ProcessesQueueLastToFirst(t *testing.T) {
	f := newFixture(t, []models.TransactionRecord{
		{Activity: "first", Expense: dec("1"), Classification: models.UnclassifiedLabel},
		{Activity: "second", Expense: dec("2"), Classification: models.UnclassifiedLabel},
		{Activity: "done", Expense: dec("3"), Classification: "Food"},
		{Activity: "third", Expense: dec("4"), Classification: models.UnclassifiedLabel},
	})
	ctx := context.Background()

	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	f.recorder.On("RecordDecision", mock.Anything, "Food", mock.Anything, models.Expense).Return(nil)
	echoReclassifier(f.reclassifier)

	require.NoError(t, f.controller.Start(ctx, f.session))

	var order []string
	for f.controller.Classifying() {
		current, ok := f.controller.Current()
		require.True(t, ok)
		order = append(order, current.Activity)
		require.NoError(t, f.controller.SelectLabel("Food"))
		require.NoError(t, f.controller.Commit(ctx))
	}

	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, Done, f.controller.State())
}

func TestController_EmptyQueueSkipsReclassification(t *testing.T) {
	f := newFixture(t, []models.TransactionRecord{
		{Activity: "Coop", Expense: dec("5"), Classification: "Food"},
	})

	require.NoError(t, f.controller.Start(context.Background(), f.session))

	assert.Equal(t, Done, f.controller.State())
	assert.True(t, f.controller.FullyClassified())
	f.reclassifier.AssertNotCalled(t, "ReclassifyAll", mock.Anything, mock.Anything)
	f.taxonomy.AssertNotCalled(t, "Options", mock.Anything, mock.Anything)
}

func TestController_CreateLabelRejectsEmptyName(t *testing.T) {
	f := newFixture(t, mixedLedger())
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	require.NoError(t, f.controller.Start(context.Background(), f.session))

	for _, name := range []string{"", "   ", "\t"} {
		err := f.controller.CreateLabel(context.Background(), name, models.Expense)
		assert.ErrorIs(t, err, flowerror.ErrValidation)
	}

	f.taxonomy.AssertNotCalled(t, "AddClassification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.taxonomy.AssertNumberOfCalls(t, "Options", 1)
	assert.Equal(t, []string{"Food"}, f.controller.Options())
	assert.Equal(t, AwaitingSelection, f.controller.State())
}

func TestController_CommitWithoutSelection(t *testing.T) {
	f := newFixture(t, mixedLedger())
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	require.NoError(t, f.controller.Start(context.Background(), f.session))
	before, _ := f.controller.Current()

	err := f.controller.Commit(context.Background())

	assert.ErrorIs(t, err, flowerror.ErrNoSelection)
	after, ok := f.controller.Current()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, f.controller.Remaining())
	f.recorder.AssertNotCalled(t, "RecordDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestController_PersistenceFailureKeepsCursorAndSelection(t *testing.T) {
	f := newFixture(t, mixedLedger())
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	f.taxonomy.On("Options", mock.Anything, models.Income).Return([]string{"Salary"}, nil)
	f.recorder.On("RecordDecision", mock.Anything, "Food", "Coop", models.Expense).Return(errNetwork).Twice()
	f.recorder.On("RecordDecision", mock.Anything, "Food", "Coop", models.Expense).Return(nil).Once()

	require.NoError(t, f.controller.Start(ctx, f.session))
	require.NoError(t, f.controller.SelectLabel("Food"))
	before, _ := f.controller.Current()

	for i := 0; i < 2; i++ {
		err := f.controller.Commit(ctx)
		assert.ErrorIs(t, err, flowerror.ErrPersistenceFailure)
		assert.ErrorIs(t, err, errNetwork)

		current, ok := f.controller.Current()
		require.True(t, ok)
		assert.Equal(t, before, current)
		selection, ok := f.controller.Selection()
		assert.True(t, ok)
		assert.Equal(t, "Food", selection)
		assert.Equal(t, ReadyToCommit, f.controller.State())
		assert.Equal(t, 2, f.controller.Remaining())
		assert.Equal(t, models.UnclassifiedLabel, f.session.Records()[2].Classification)
	}

	require.NoError(t, f.controller.Commit(ctx))
	assert.Equal(t, 1, f.controller.Remaining())
	assert.Equal(t, "Food", f.session.Records()[2].Classification)
	f.reclassifier.AssertNotCalled(t, "ReclassifyAll", mock.Anything, mock.Anything)
}

func TestController_TaxonomyUnavailableOnStart(t *testing.T) {
	f := newFixture(t, mixedLedger())
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return(nil, errNetwork).Once()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil).Once()

	err := f.controller.Start(ctx, f.session)
	assert.ErrorIs(t, err, flowerror.ErrTaxonomyUnavailable)
	assert.Equal(t, OptionsUnavailable, f.controller.State())
	current, ok := f.controller.Current()
	require.True(t, ok)
	assert.Equal(t, 2, current.Index)
	assert.Empty(t, f.controller.Options())

	assert.ErrorIs(t, f.controller.SelectLabel("Food"), flowerror.ErrInvalidState)
	assert.ErrorIs(t, f.controller.Commit(ctx), flowerror.ErrNoSelection)

	require.NoError(t, f.controller.Advance(ctx))
	assert.Equal(t, AwaitingSelection, f.controller.State())
	assert.Equal(t, []string{"Food"}, f.controller.Options())
	current, _ = f.controller.Current()
	assert.Equal(t, 2, current.Index)
}

func TestController_TaxonomyUnavailableAfterCommit(t *testing.T) {
	f := newFixture(t, mixedLedger())
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	f.taxonomy.On("Options", mock.Anything, models.Income).Return(nil, errNetwork).Once()
	f.taxonomy.On("Options", mock.Anything, models.Income).Return([]string{"Salary"}, nil).Once()
	f.recorder.On("RecordDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.controller.Start(ctx, f.session))
	require.NoError(t, f.controller.SelectLabel("Food"))

	err := f.controller.Commit(ctx)
	assert.ErrorIs(t, err, flowerror.ErrTaxonomyUnavailable)
	assert.Equal(t, OptionsUnavailable, f.controller.State())
	assert.Equal(t, 1, f.controller.Remaining(), "the committed item is consumed")
	assert.Equal(t, "Food", f.session.Records()[2].Classification)

	require.NoError(t, f.controller.Advance(ctx))
	current, ok := f.controller.Current()
	require.True(t, ok)
	assert.Equal(t, models.Income, current.Direction)
	assert.Equal(t, []string{"Salary"}, f.controller.Options())
}

func TestController_SelectLabel(t *testing.T) {
	f := newFixture(t, mixedLedger())
	assert.ErrorIs(t, f.controller.SelectLabel("Food"), flowerror.ErrInvalidState)

	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food", "Rent"}, nil)
	require.NoError(t, f.controller.Start(context.Background(), f.session))

	tests := []struct {
		label   string
		wantErr error
	}{
		{"Salary", flowerror.ErrValidation},
		{"", flowerror.ErrValidation},
		{"food", flowerror.ErrValidation},
		{"Food", nil},
		{"Rent", nil},
	}
	for _, tt := range tests {
		err := f.controller.SelectLabel(tt.label)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.label)
			continue
		}
		require.NoError(t, err, tt.label)
		selection, ok := f.controller.Selection()
		assert.True(t, ok)
		assert.Equal(t, tt.label, selection)
	}
	assert.Equal(t, ReadyToCommit, f.controller.State())
}

func TestController_CreateLabel(t *testing.T) {
	f := newFixture(t, mixedLedger())
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil).Once()
	f.taxonomy.On("AddClassification", mock.Anything, "Groceries", "Coop", models.Expense).Return(nil).Once()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food", "Groceries"}, nil).Once()
	f.recorder.On("RecordDecision", mock.Anything, "Groceries", "Coop", models.Expense).Return(nil).Once()
	f.taxonomy.On("Options", mock.Anything, models.Income).Return([]string{"Salary"}, nil)

	require.NoError(t, f.controller.Start(ctx, f.session))
	require.NoError(t, f.controller.CreateLabel(ctx, "  Groceries ", models.Expense))

	assert.Equal(t, ReadyToCommit, f.controller.State())
	assert.Equal(t, []string{"Food", "Groceries"}, f.controller.Options())
	selection, ok := f.controller.Selection()
	assert.True(t, ok)
	assert.Equal(t, "Groceries", selection)

	require.NoError(t, f.controller.Commit(ctx))
	assert.Equal(t, "Groceries", f.session.Records()[2].Classification)
	f.taxonomy.AssertExpectations(t)
}

func TestController_CreateLabelFailures(t *testing.T) {
	t.Run("registration fails", func(t *testing.T) {
		f := newFixture(t, mixedLedger())
		ctx := context.Background()
		f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil).Once()
		f.taxonomy.On("AddClassification", mock.Anything, "Groceries", "Coop", models.Expense).Return(errNetwork)

		require.NoError(t, f.controller.Start(ctx, f.session))
		err := f.controller.CreateLabel(ctx, "Groceries", models.Expense)

		assert.ErrorIs(t, err, flowerror.ErrPersistenceFailure)
		assert.Equal(t, AwaitingSelection, f.controller.State())
		assert.Equal(t, []string{"Food"}, f.controller.Options())
		_, ok := f.controller.Selection()
		assert.False(t, ok)
		assert.ErrorIs(t, f.controller.SelectLabel("Groceries"), flowerror.ErrValidation)
	})

	t.Run("refresh fails but label stays selected", func(t *testing.T) {
		f := newFixture(t, mixedLedger())
		ctx := context.Background()
		f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil).Once()
		f.taxonomy.On("AddClassification", mock.Anything, "Groceries", "Coop", models.Expense).Return(nil)
		f.taxonomy.On("Options", mock.Anything, models.Expense).Return(nil, errNetwork).Once()
		f.taxonomy.On("Options", mock.Anything, models.Income).Return([]string{"Salary"}, nil)
		f.recorder.On("RecordDecision", mock.Anything, "Groceries", "Coop", models.Expense).Return(nil)

		require.NoError(t, f.controller.Start(ctx, f.session))
		err := f.controller.CreateLabel(ctx, "Groceries", models.Expense)

		assert.ErrorIs(t, err, flowerror.ErrTaxonomyUnavailable)
		assert.Equal(t, ReadyToCommit, f.controller.State())
		selection, _ := f.controller.Selection()
		assert.Equal(t, "Groceries", selection)
		require.NoError(t, f.controller.SelectLabel("Food"))
		require.NoError(t, f.controller.SelectLabel("Groceries"))
		require.NoError(t, f.controller.Commit(ctx))
		assert.Equal(t, 1, f.controller.Remaining())
	})

	t.Run("direction must match the current item", func(t *testing.T) {
		f := newFixture(t, mixedLedger())
		f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)

		require.NoError(t, f.controller.Start(context.Background(), f.session))
		err := f.controller.CreateLabel(context.Background(), "Bonus", models.Income)

		assert.ErrorIs(t, err, flowerror.ErrValidation)
		f.taxonomy.AssertNotCalled(t, "AddClassification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestController_ReclassificationFailureKeepsLedger(t *testing.T) {
	f := newFixture(t, []models.TransactionRecord{
		{Activity: "Landlord SA", Expense: dec("20"), Classification: "Rent"},
		{Activity: "Coop", Expense: dec("50"), Classification: models.UnclassifiedLabel},
	})
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food", "Rent"}, nil)
	f.recorder.On("RecordDecision", mock.Anything, "Food", "Coop", models.Expense).Return(nil).Once()
	f.reclassifier.On("ReclassifyAll", mock.Anything, mock.Anything).Return(nil, errNetwork).Once()
	reclassified := []models.TransactionRecord{
		{Activity: "Coop", Expense: dec("50"), Classification: "Food"},
		{Activity: "Landlord SA", Expense: dec("20"), Classification: "Rent"},
	}
	f.reclassifier.On("ReclassifyAll", mock.Anything, mock.Anything).Return(reclassified, nil).Once()

	require.NoError(t, f.controller.Start(ctx, f.session))
	require.NoError(t, f.controller.SelectLabel("Food"))

	err := f.controller.Commit(ctx)
	assert.ErrorIs(t, err, flowerror.ErrReclassificationFailure)
	assert.Equal(t, Reclassifying, f.controller.State())
	assert.True(t, f.controller.Classifying())
	assert.False(t, f.controller.FullyClassified())
	assert.Equal(t, []string{"Rent", "Food"}, labels(f.session.Records()), "per-item labels survive")

	assert.ErrorIs(t, f.controller.Commit(ctx), flowerror.ErrInvalidState)
	f.recorder.AssertNumberOfCalls(t, "RecordDecision", 1)

	require.NoError(t, f.controller.Reclassify(ctx))
	assert.Equal(t, Done, f.controller.State())
	assert.Equal(t, reclassified, f.session.Records())
}

func TestController_InvalidReclassificationResultIsRejected(t *testing.T) {
	f := newFixture(t, []models.TransactionRecord{
		{Activity: "Coop", Expense: dec("50"), Classification: models.UnclassifiedLabel},
	})
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	f.recorder.On("RecordDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.reclassifier.On("ReclassifyAll", mock.Anything, mock.Anything).Return([]models.TransactionRecord{
		{Activity: "Coop", Expense: dec("-50"), Classification: "Food"},
	}, nil)

	require.NoError(t, f.controller.Start(ctx, f.session))
	require.NoError(t, f.controller.SelectLabel("Food"))

	err := f.controller.Commit(ctx)
	assert.ErrorIs(t, err, flowerror.ErrReclassificationFailure)
	assert.True(t, dec("50").Equal(f.session.Records()[0].Expense))
}

func TestController_OperationsOutsideWorkflow(t *testing.T) {
	c := NewController(new(MockTaxonomy), new(MockRecorder), new(MockReclassifier), logging.NewMockLogger())
	ctx := context.Background()

	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Classifying())
	assert.False(t, c.FullyClassified())
	assert.ErrorIs(t, c.Advance(ctx), flowerror.ErrInvalidState)
	assert.ErrorIs(t, c.Commit(ctx), flowerror.ErrInvalidState)
	assert.ErrorIs(t, c.CreateLabel(ctx, "x", models.Expense), flowerror.ErrInvalidState)
	assert.ErrorIs(t, c.Reclassify(ctx), flowerror.ErrInvalidState)
	assert.Empty(t, c.Options())
}

func TestController_RestartDiscardsProgress(t *testing.T) {
	f := newFixture(t, mixedLedger())
	ctx := context.Background()
	f.taxonomy.On("Options", mock.Anything, models.Expense).Return([]string{"Food"}, nil)
	require.NoError(t, f.controller.Start(ctx, f.session))
	require.NoError(t, f.controller.SelectLabel("Food"))

	other, err := ledger.NewSession([]models.TransactionRecord{
		{Activity: "Migros", Expense: dec("9"), Classification: models.UnclassifiedLabel},
	}, nil, logging.NewMockLogger())
	require.NoError(t, err)

	require.NoError(t, f.controller.Start(ctx, other))
	assert.Equal(t, AwaitingSelection, f.controller.State())
	assert.Equal(t, 1, f.controller.Remaining())
	_, ok := f.controller.Selection()
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{Idle, AwaitingSelection, true},
		{Idle, Done, true},
		{Idle, ReadyToCommit, false},
		{AwaitingSelection, ReadyToCommit, true},
		{AwaitingSelection, Reclassifying, false},
		{ReadyToCommit, Reclassifying, true},
		{OptionsUnavailable, ReadyToCommit, false},
		{Reclassifying, Reclassifying, true},
		{Reclassifying, AwaitingSelection, false},
		{Done, Idle, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
	assert.Equal(t, "Unknown", State(42).String())
}
