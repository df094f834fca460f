package l3_service

import (
	"context"
	"errors"
	mock_repository "mirrorbalance/internal/repository/mocks"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_reportEmailServiceHandler_SendReport(t *testing.T) {
	t.Run("sends html and text bodies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		emailRepository := mock_repository.NewMockEmailRepository(ctrl)
		handler := NewReportEmailService(emailRepository)

		emailRepository.EXPECT().SendEmail(
			gomock.Any(),
			"me@example.com",
			"Rebalance iis against main (Mar 1, 2024)",
			gomock.Cond(func(x any) bool { return strings.Contains(x.(string), "<table>") }),
			"Alpha: 1.00\nunresolved (cash?): -5.00\n",
		).Return(nil)

		err := handler.SendReport(context.Background(), "me@example.com", sampleReport())
		require.NoError(t, err)
	})

	t.Run("missing recipient", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := NewReportEmailService(mock_repository.NewMockEmailRepository(ctrl))

		err := handler.SendReport(context.Background(), "", sampleReport())
		require.Error(t, err)
	})

	t.Run("delivery failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		emailRepository := mock_repository.NewMockEmailRepository(ctrl)
		handler := NewReportEmailService(emailRepository)

		sesErr := errors.New("MessageRejected")
		emailRepository.EXPECT().SendEmail(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(sesErr)

		err := handler.SendReport(context.Background(), "me@example.com", sampleReport())
		require.ErrorIs(t, err, sesErr)
	})
}
