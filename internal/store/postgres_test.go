package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAppointmentDefaultsStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs("user-1", "Formatação de PC", "31/12/2025", "14:30", "Nenhum detalhe adicional", "pending").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgres(mock)
	err = s.InsertAppointment(context.Background(), Appointment{
		UserID:      "user-1",
		ServiceType: "Formatação de PC",
		Date:        "31/12/2025",
		Time:        "14:30",
		Details:     "Nenhum detalhe adicional",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAppointmentAnonymousUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(nil, "Remoção de Vírus", "01/02/2026", "09:00", "pc lento", "pending").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgres(mock)
	err = s.InsertAppointment(context.Background(), Appointment{
		ServiceType: "Remoção de Vírus",
		Date:        "01/02/2026",
		Time:        "09:00",
		Details:     "pc lento",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAppointmentWrapsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(errors.New("connection refused"))

	s := NewPostgres(mock)
	err = s.InsertAppointment(context.Background(), Appointment{ServiceType: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: failed to insert appointment")
}

func TestInsertDiagnostic(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO diagnostics").
		WithArgs("user-1", "problema na placa mãe", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgres(mock)
	err = s.InsertDiagnostic(context.Background(), Diagnostic{
		UserID:          "user-1",
		ProblemReported: "problema na placa mãe",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertChatLog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO chat_logs").
		WithArgs("user-1", "olá", "user").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgres(mock)
	err = s.InsertChatLog(context.Background(), ChatLog{
		UserID:      "user-1",
		MessageText: "olá",
		MessageType: "user",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
