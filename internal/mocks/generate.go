// Package mocks provides gomock implementations of the page services the HTTP
// layer depends on.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	classes := mocks.NewMockClassesService(ctrl)
//	classes.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(page, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=classes_service_mock.go github.com/harmonia-academy/harmonia-web/internal/http ClassesService
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=students_service_mock.go github.com/harmonia-academy/harmonia-web/internal/http StudentsService
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=transactions_service_mock.go github.com/harmonia-academy/harmonia-web/internal/http TransactionsService
