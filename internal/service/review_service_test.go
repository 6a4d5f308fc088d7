package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"marketplace-api/internal/models"
	"marketplace-api/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewService(t *testing.T) (*ReviewService, sqlmock.Sqlmock, *recordingWriter) {
	s, mock := newMockStore(t)
	events, w := newRecordingPublisher()
	return NewReviewService(s, events), mock, w
}

func TestCreateReviewRecomputesScore(t *testing.T) {
	svc, mock, w := newReviewService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserExists).WithArgs(int64(1)).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qProductExists).WithArgs(int64(2)).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qPairExists).WithArgs(int64(1), int64(2), int64(0)).WillReturnRows(existsRow(false))
	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(int64(1), int64(2), 5, "Excellent").
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 2, 5, "Excellent", now, now))
	expectRescore(mock, 2, 4.5, "{10,11}",
		models.ReviewScore{ID: 10, Score: 4},
		models.ReviewScore{ID: 11, Score: 5})
	mock.ExpectCommit()

	review, err := svc.CreateReview(context.Background(), validation.ReviewCreate{
		UserID: 1, ProductID: 2, Score: 5, Content: "Excellent",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), review.ID)
	assert.Equal(t, []string{"review-11", "product-2"}, w.keys)

	scoreEvent := w.events[1].(*models.ProductScoreEvent)
	assert.Equal(t, 4.5, scoreEvent.Score)
	assert.Equal(t, []int64{10, 11}, scoreEvent.ReviewIDs)
}

func TestCreateReviewDuplicatePairLeavesScore(t *testing.T) {
	svc, mock, w := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qUserExists).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qProductExists).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qPairExists).WillReturnRows(existsRow(true))
	mock.ExpectRollback()

	_, err := svc.CreateReview(context.Background(), validation.ReviewCreate{
		UserID: 1, ProductID: 2, Score: 3, Content: "Again",
	})
	requireStatus(t, err, http.StatusConflict, msgDuplicateReview)
	assert.Empty(t, w.keys)
}

func TestCreateReviewUnknownProduct(t *testing.T) {
	svc, mock, _ := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qUserExists).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qProductExists).WithArgs(int64(404)).WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	_, err := svc.CreateReview(context.Background(), validation.ReviewCreate{
		UserID: 1, ProductID: 404, Score: 3, Content: "Where?",
	})
	requireStatus(t, err, http.StatusNotFound, "Product not found")
}

func TestCreateReviewScoreOutOfRange(t *testing.T) {
	svc, _, _ := newReviewService(t)

	_, err := svc.CreateReview(context.Background(), validation.ReviewCreate{
		UserID: 1, ProductID: 2, Score: 6, Content: "Too good",
	})
	httpErr := requireStatus(t, err, http.StatusBadRequest, "Validation failed")
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "score", httpErr.Errors[0].Field)
}

func TestUpdateReviewMovingProductRescoresBoth(t *testing.T) {
	svc, mock, w := newReviewService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id = \\$1").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 2, 5, "Excellent", now, now))
	mock.ExpectQuery(qProductExists).WithArgs(int64(3)).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qPairExists).WithArgs(int64(1), int64(3), int64(11)).WillReturnRows(existsRow(false))
	mock.ExpectQuery("UPDATE reviews SET product_id = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2").
		WithArgs(int64(3), int64(11)).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 3, 5, "Excellent", now, now))
	expectRescore(mock, 2, 4.0, "{10}", models.ReviewScore{ID: 10, Score: 4})
	expectRescore(mock, 3, 5.0, "{11}", models.ReviewScore{ID: 11, Score: 5})
	mock.ExpectCommit()

	newProduct := int64(3)
	review, err := svc.UpdateReview(context.Background(), 11, validation.ReviewUpdate{ProductID: &newProduct})
	require.NoError(t, err)
	assert.Equal(t, int64(3), review.ProductID)
	assert.Equal(t, []string{"review-11", "product-2", "product-3"}, w.keys)
}

func TestUpdateReviewScoreOnlySkipsPairCheck(t *testing.T) {
	svc, mock, _ := newReviewService(t)
	now := time.Now()
	score := 2

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 2, 5, "Excellent", now, now))
	mock.ExpectQuery("UPDATE reviews SET score = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2").
		WithArgs(2, int64(11)).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 2, 2, "Excellent", now, now))
	expectRescore(mock, 2, 2.0, "{11}", models.ReviewScore{ID: 11, Score: 2})
	mock.ExpectCommit()

	review, err := svc.UpdateReview(context.Background(), 11, validation.ReviewUpdate{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 2, review.Score)
}

func TestUpdateReviewOntoReviewedPair(t *testing.T) {
	svc, mock, _ := newReviewService(t)
	now := time.Now()
	otherUser := int64(4)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 2, 5, "Excellent", now, now))
	mock.ExpectQuery(qUserExists).WithArgs(int64(4)).WillReturnRows(existsRow(true))
	mock.ExpectQuery(qPairExists).WithArgs(int64(4), int64(2), int64(11)).WillReturnRows(existsRow(true))
	mock.ExpectRollback()

	_, err := svc.UpdateReview(context.Background(), 11, validation.ReviewUpdate{UserID: &otherUser})
	requireStatus(t, err, http.StatusConflict, msgDuplicateReview)
}

func TestUpdateReviewRequiresAField(t *testing.T) {
	svc, _, _ := newReviewService(t)

	_, err := svc.UpdateReview(context.Background(), 11, validation.ReviewUpdate{})
	requireStatus(t, err, http.StatusBadRequest, msgNoFields)
}

func TestDeleteReviewRecomputesScore(t *testing.T) {
	svc, mock, w := newReviewService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews WHERE id = \\$1").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(11, 1, 2, 5, "Excellent", now, now))
	expectRescore(mock, 2, 0.0, "{}")
	mock.ExpectCommit()

	_, err := svc.DeleteReview(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"review-11", "product-2"}, w.keys)
}

func TestDeleteReviewNotFound(t *testing.T) {
	svc, mock, _ := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews").WillReturnRows(sqlmock.NewRows(reviewCols))
	mock.ExpectRollback()

	_, err := svc.DeleteReview(context.Background(), 11)
	requireStatus(t, err, http.StatusNotFound, "Review not found")
}

func TestGetReviewNotFound(t *testing.T) {
	svc, mock, _ := newReviewService(t)

	mock.ExpectQuery("FROM reviews r").WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows(reviewCols))

	_, err := svc.GetReview(context.Background(), 5)
	requireStatus(t, err, http.StatusNotFound, "Review not found")
}
