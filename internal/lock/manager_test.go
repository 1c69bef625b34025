package lock_test

import (
    "context"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/swiftbus/reservation/internal/lock"
    "github.com/swiftbus/reservation/internal/repository"
)

var seatCols = []string{"id", "schedule_id", "seat_label", "deck", "seat_type", "price_paise", "gender_tag", "status", "locked_by_user", "locked_until", "booking_id", "row_index", "col_index", "created_at", "updated_at"}

func seatRow(rows *sqlmock.Rows, id, scheduleID, label, status string, lockedBy interface{}) *sqlmock.Rows {
    now := time.Now()
    return rows.AddRow(id, scheduleID, label, "lower", "st-seater", int64(50000), nil, status, lockedBy, nil, nil, 1, 1, now, now)
}

func TestManagerClaim(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    seats := repository.NewSeatRepo(db)
    client := lock.NewMemoryClient()
    m := lock.NewManager(seats, client, 10*time.Minute)

    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "sched-1", "L1", "available", nil)
    seatRow(rows, "seat-2", "sched-1", "L2", "available", nil)
    mock.ExpectQuery(regexp.QuoteMeta("SELECT " + "id, schedule_id, seat_label, deck, seat_type, price_paise, gender_tag, status, locked_by_user, locked_until, booking_id, row_index, col_index, created_at, updated_at" + " FROM seats WHERE id IN (?, ?)")).
        WithArgs("seat-1", "seat-2").
        WillReturnRows(rows)
    mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET status = 'locked', locked_by_user = ?, locked_until = ? WHERE id IN (?, ?)")).
        WithArgs("alice", sqlmock.AnyArg(), "seat-1", "seat-2").
        WillReturnResult(sqlmock.NewResult(0, 2))

    res, err := m.Claim(context.Background(), "sched-1", []string{"seat-1", "seat-2"}, "alice")
    require.NoError(t, err)
    assert.Equal(t, []string{"seat-1", "seat-2"}, res.LockedSeats)
    assert.True(t, res.ExpiresAt.After(time.Now()))

    owner, err := client.Owner(context.Background(), lock.Key("sched-1", "L1"))
    require.NoError(t, err)
    assert.Equal(t, "alice", owner)

    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerClaimCacheConflict(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    seats := repository.NewSeatRepo(db)
    client := lock.NewMemoryClient()
    require.NoError(t, client.TryClaim(context.Background(), []string{lock.Key("sched-1", "L1")}, "bob", time.Minute))
    m := lock.NewManager(seats, client, 10*time.Minute)

    // The durable row still says available; the cache claim decides.
    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "sched-1", "L1", "available", nil)
    mock.ExpectQuery("SELECT .+ FROM seats WHERE id IN").
        WithArgs("seat-1").
        WillReturnRows(rows)

    _, err = m.Claim(context.Background(), "sched-1", []string{"seat-1"}, "alice")
    var taken *lock.TakenError
    require.ErrorAs(t, err, &taken)
    assert.Equal(t, lock.Key("sched-1", "L1"), taken.Key)

    // No durable write may have happened.
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerClaimUnavailableRow(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    m := lock.NewManager(repository.NewSeatRepo(db), lock.NewMemoryClient(), 10*time.Minute)

    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "sched-1", "L1", "locked", "bob")
    mock.ExpectQuery("SELECT .+ FROM seats WHERE id IN").
        WithArgs("seat-1").
        WillReturnRows(rows)

    _, err = m.Claim(context.Background(), "sched-1", []string{"seat-1"}, "alice")
    var unavailable *lock.UnavailableError
    require.ErrorAs(t, err, &unavailable)
    assert.Equal(t, "L1", unavailable.Label)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerClaimWrongSchedule(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    m := lock.NewManager(repository.NewSeatRepo(db), lock.NewMemoryClient(), 10*time.Minute)

    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "other-sched", "L1", "available", nil)
    mock.ExpectQuery("SELECT .+ FROM seats WHERE id IN").
        WithArgs("seat-1").
        WillReturnRows(rows)

    _, err = m.Claim(context.Background(), "sched-1", []string{"seat-1"}, "alice")
    var wrong *lock.WrongScheduleError
    assert.ErrorAs(t, err, &wrong)
}

func TestManagerClaimMissingSeat(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    m := lock.NewManager(repository.NewSeatRepo(db), lock.NewMemoryClient(), 10*time.Minute)

    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "sched-1", "L1", "available", nil)
    mock.ExpectQuery("SELECT .+ FROM seats WHERE id IN").
        WithArgs("seat-1", "seat-missing").
        WillReturnRows(rows)

    _, err = m.Claim(context.Background(), "sched-1", []string{"seat-1", "seat-missing"}, "alice")
    assert.ErrorIs(t, err, lock.ErrSeatsNotFound)
}

func TestManagerClaimTooManySeats(t *testing.T) {
    db, _, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    m := lock.NewManager(repository.NewSeatRepo(db), nil, 10*time.Minute)

    ids := make([]string, lock.MaxSeatsPerClaim+1)
    for i := range ids {
        ids[i] = "seat"
    }
    _, err = m.Claim(context.Background(), "sched-1", ids, "alice")
    assert.ErrorIs(t, err, lock.ErrTooManySeats)
}

func TestManagerClaimWithoutCache(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    // nil client: validation and the durable write still happen.
    m := lock.NewManager(repository.NewSeatRepo(db), nil, 10*time.Minute)

    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "sched-1", "L1", "available", nil)
    mock.ExpectQuery("SELECT .+ FROM seats WHERE id IN").
        WithArgs("seat-1").
        WillReturnRows(rows)
    mock.ExpectExec("UPDATE seats SET status = 'locked'").
        WithArgs("alice", sqlmock.AnyArg(), "seat-1").
        WillReturnResult(sqlmock.NewResult(0, 1))

    res, err := m.Claim(context.Background(), "sched-1", []string{"seat-1"}, "alice")
    require.NoError(t, err)
    assert.Equal(t, []string{"seat-1"}, res.LockedSeats)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerRelease(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    client := lock.NewMemoryClient()
    require.NoError(t, client.TryClaim(context.Background(), []string{lock.Key("sched-1", "L1")}, "alice", time.Minute))
    m := lock.NewManager(repository.NewSeatRepo(db), client, 10*time.Minute)

    rows := sqlmock.NewRows(seatCols)
    seatRow(rows, "seat-1", "sched-1", "L1", "locked", "alice")
    mock.ExpectQuery("SELECT .+ FROM seats WHERE id IN").
        WithArgs("seat-1").
        WillReturnRows(rows)
    mock.ExpectExec(regexp.QuoteMeta("UPDATE seats SET status = 'available', locked_by_user = NULL, locked_until = NULL WHERE locked_by_user = ? AND id IN (?)")).
        WithArgs("alice", "seat-1").
        WillReturnResult(sqlmock.NewResult(0, 1))

    released, err := m.Release(context.Background(), "sched-1", []string{"seat-1"}, "alice")
    require.NoError(t, err)
    assert.Equal(t, []string{"seat-1"}, released)

    owner, err := client.Owner(context.Background(), lock.Key("sched-1", "L1"))
    require.NoError(t, err)
    assert.Equal(t, "", owner)
    assert.NoError(t, mock.ExpectationsWereMet())
}
