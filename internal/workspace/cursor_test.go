package workspace

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gisadmin/internal/types"
)

func TestReadFirst_WholeTable(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `Owner`, `Acres` FROM `parcels` LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"Owner", "Acres"}).AddRow([]byte("County"), 2.5))

	row, err := ws.ReadFirst(context.Background(), parcels, []string{"Owner", "Acres"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"County", 2.5}, row)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadFirst_Selection(t *testing.T) {
	ws, mock := newMockWorkspace(t)
	selectParcels(t, ws, mock, 4)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `Owner` FROM `parcels` WHERE `OBJECTID` IN (?) LIMIT 1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"Owner"}).AddRow(nil))

	row, err := ws.ReadFirst(context.Background(), parcels, []string{"Owner"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{nil}, row)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadFirst_SearchesBatchesInOrder(t *testing.T) {
	ws, mock := newMockWorkspace(t)
	ws.SetBatchSize(2)
	selectParcels(t, ws, mock, 1, 2, 3, 4, 5)

	// Records 1 and 2 were deleted since they were selected.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `Owner` FROM `parcels` WHERE `OBJECTID` IN (?, ?) LIMIT 1")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"Owner"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `Owner` FROM `parcels` WHERE `OBJECTID` IN (?, ?) LIMIT 1")).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"Owner"}).AddRow([]byte("State")))

	row, err := ws.ReadFirst(context.Background(), parcels, []string{"Owner"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"State"}, row)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query for the last batch once a record is found")
}

func TestReadFirst_AllBatchesEmpty(t *testing.T) {
	ws, mock := newMockWorkspace(t)
	ws.SetBatchSize(1)
	selectParcels(t, ws, mock, 1, 2)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `Owner` FROM `parcels` WHERE `OBJECTID` IN (?) LIMIT 1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"Owner"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `Owner` FROM `parcels` WHERE `OBJECTID` IN (?) LIMIT 1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"Owner"}))

	_, err := ws.ReadFirst(context.Background(), parcels, []string{"Owner"})
	assert.ErrorIs(t, err, types.ErrNoRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadFirst_NoRecords(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID` FROM `parcels` LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID"}))

	_, err := ws.ReadFirst(context.Background(), parcels, []string{"OBJECTID"})
	assert.ErrorIs(t, err, types.ErrNoRecords)
}

func TestReadFirst_InvalidField(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	_, err := ws.ReadFirst(context.Background(), parcels, []string{"Owner`"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEachSelected(t *testing.T) {
	ws, mock := newMockWorkspace(t)
	selectParcels(t, ws, mock, 1, 2)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID`, `Pop`, `Name` FROM `parcels` WHERE `OBJECTID` IN (?, ?)")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID", "Pop", "Name"}).
			AddRow(int64(1), int64(0), []byte("a")).
			AddRow(int64(2), int64(0), []byte("b")))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `parcels` SET `Pop` = ?, `Name` = ? WHERE `OBJECTID` = ?")).
		WithArgs(int64(42), "A", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `parcels` SET `Pop` = ?, `Name` = ? WHERE `OBJECTID` = ?")).
		WithArgs(int64(42), "B", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen [][]interface{}
	n, err := ws.UpdateEachSelected(context.Background(), parcels, []string{"Pop", "Name"}, func(row []interface{}) ([]interface{}, error) {
		seen = append(seen, row)
		return []interface{}{int64(42), strings.ToUpper(row[1].(string))}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, [][]interface{}{{int64(0), "a"}, {int64(0), "b"}}, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEachSelected_LargeSelectionIsBatched(t *testing.T) {
	ws, mock := newMockWorkspace(t)
	ws.SetBatchSize(2)
	selectParcels(t, ws, mock, 1, 2, 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID`, `Pop` FROM `parcels` WHERE `OBJECTID` IN (?, ?)")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID", "Pop"}).
			AddRow(int64(1), int64(0)).
			AddRow(int64(2), int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID`, `Pop` FROM `parcels` WHERE `OBJECTID` IN (?)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID", "Pop"}).AddRow(int64(3), int64(0)))
	mock.ExpectBegin()
	for _, id := range []int64{1, 2, 3} {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `parcels` SET `Pop` = ? WHERE `OBJECTID` = ?")).
			WithArgs(int64(42), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	n, err := ws.UpdateEachSelected(context.Background(), parcels, []string{"Pop"}, func(row []interface{}) ([]interface{}, error) {
		return []interface{}{int64(42)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEachSelected_NullValue(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID`, `Status` FROM `parcels`")).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID", "Status"}).AddRow(int64(8), []byte("Active")))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `parcels` SET `Status` = ? WHERE `OBJECTID` = ?")).
		WithArgs(nil, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := ws.UpdateEachSelected(context.Background(), parcels, []string{"Status"}, func(row []interface{}) ([]interface{}, error) {
		return []interface{}{nil}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEachSelected_RollsBackOnError(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID`, `Status` FROM `parcels`")).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID", "Status"}).
			AddRow(int64(1), nil).
			AddRow(int64(2), nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `parcels` SET `Status` = ? WHERE `OBJECTID` = ?")).
		WithArgs("Closed", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `parcels` SET `Status` = ? WHERE `OBJECTID` = ?")).
		WithArgs("Closed", int64(2)).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := ws.UpdateEachSelected(context.Background(), parcels, []string{"Status"}, func(row []interface{}) ([]interface{}, error) {
		return []interface{}{"Closed"}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock wait timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEachSelected_WrongValueCount(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `OBJECTID`, `Status` FROM `parcels`")).
		WillReturnRows(sqlmock.NewRows([]string{"OBJECTID", "Status"}).AddRow(int64(1), nil))
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := ws.UpdateEachSelected(context.Background(), parcels, []string{"Status"}, func(row []interface{}) ([]interface{}, error) {
		return []interface{}{"a", "b"}, nil
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEachSelected_NoFields(t *testing.T) {
	ws, mock := newMockWorkspace(t)

	n, err := ws.UpdateEachSelected(context.Background(), parcels, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
