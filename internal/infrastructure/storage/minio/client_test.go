package minio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/testutil"
	apperrors "github.com/turtacn/cdforge/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, config).Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return m.Called(ctx, bucketName, opts).Get(0).(<-chan minio.ObjectInfo)
}

func (m *MockMinIOAPI) RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	return m.Called(ctx, bucketName, objectsCh, opts).Get(0).(<-chan minio.RemoveObjectError)
}

type ArchiverTestSuite struct {
	suite.Suite
	api *MockMinIOAPI
	ctx context.Context
}

func (s *ArchiverTestSuite) SetupTest() {
	s.api = &MockMinIOAPI{}
	s.ctx = context.Background()
}

func (s *ArchiverTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *ArchiverTestSuite) newClient(cfg *MinIOConfig) *MinIOClient {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(true, nil).Once()
	c, err := NewMinIOClientWithAPI(s.ctx, s.api, cfg, logging.NewNopLogger())
	s.Require().NoError(err)
	return c
}

func (s *ArchiverTestSuite) TestApplyDefaults() {
	cfg := &MinIOConfig{}
	applyDefaults(cfg)
	s.Equal("us-east-1", cfg.Region)
	s.Equal("cdforge-artifacts", cfg.Bucket)
	s.Equal(time.Hour, cfg.PresignExpiry)
}

func (s *ArchiverTestSuite) TestEnsureBucket_Creates() {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(false, nil).Once()
	s.api.On("MakeBucket", mock.Anything, "artifacts", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil).Once()
	s.api.On("SetBucketLifecycle", mock.Anything, "artifacts", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == 7
	})).Return(nil).Once()

	_, err := NewMinIOClientWithAPI(s.ctx, s.api, &MinIOConfig{Bucket: "artifacts", RetentionDays: 7}, nil)
	s.NoError(err)
}

func (s *ArchiverTestSuite) TestEnsureBucket_Unreachable() {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(false, errors.New("dial tcp: refused")).Once()
	_, err := NewMinIOClientWithAPI(s.ctx, s.api, &MinIOConfig{Bucket: "artifacts"}, nil)
	s.True(apperrors.IsCode(err, apperrors.CodeServiceUnavailable))
}

func (s *ArchiverTestSuite) TestArchive_UploadsExistingFiles() {
	c := s.newClient(&MinIOConfig{Bucket: "artifacts"})
	dir := s.T().TempDir()
	pdb := filepath.Join(dir, "non_minimized.pdb")
	s.Require().NoError(os.WriteFile(pdb, []byte(testutil.SamplePDB), 0o644))

	s.api.On("PutObject", mock.Anything, "artifacts", "sess-1/non_minimized.pdb", mock.Anything, int64(len(testutil.SamplePDB)),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "chemical/x-pdb" })).
		Return(minio.UploadInfo{Size: int64(len(testutil.SamplePDB))}, nil).Once()
	u, _ := url.Parse("http://minio:9000/artifacts/sess-1/non_minimized.pdb?X-Amz-Signature=abc")
	s.api.On("PresignedGetObject", mock.Anything, "artifacts", "sess-1/non_minimized.pdb", time.Hour, url.Values(nil)).Return(u, nil).Once()

	arts, err := NewArchiver(c, nil).Archive(s.ctx, "sess-1", []string{pdb, filepath.Join(dir, "estructura.png")})
	s.Require().NoError(err)
	s.Require().Len(arts, 1)
	s.Equal("non_minimized.pdb", arts[0].Name)
	s.Equal("sess-1/non_minimized.pdb", arts[0].Key)
	s.Equal(u.String(), arts[0].URL)
}

func (s *ArchiverTestSuite) TestArchive_UploadFailure() {
	c := s.newClient(&MinIOConfig{Bucket: "artifacts"})
	pdb := filepath.Join(s.T().TempDir(), "minimized.pdb")
	s.Require().NoError(os.WriteFile(pdb, []byte("x"), 0o644))

	s.api.On("PutObject", mock.Anything, "artifacts", "sess-1/minimized.pdb", mock.Anything, int64(1), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied")).Once()

	_, err := NewArchiver(c, nil).Archive(s.ctx, "sess-1", []string{pdb})
	s.True(apperrors.IsCode(err, apperrors.CodeStorageError))
}

func (s *ArchiverTestSuite) TestRemove() {
	c := s.newClient(&MinIOConfig{Bucket: "artifacts"})

	objects := make(chan minio.ObjectInfo)
	close(objects)
	var listed <-chan minio.ObjectInfo = objects
	s.api.On("ListObjects", mock.Anything, "artifacts", minio.ListObjectsOptions{Prefix: "sess-1/", Recursive: true}).Return(listed).Once()

	errs := make(chan minio.RemoveObjectError, 1)
	errs <- minio.RemoveObjectError{ObjectName: "sess-1/x.pdb", Err: errors.New("locked")}
	close(errs)
	var removeErrs <-chan minio.RemoveObjectError = errs
	s.api.On("RemoveObjects", mock.Anything, "artifacts", listed, minio.RemoveObjectsOptions{}).Return(removeErrs).Once()

	err := NewArchiver(c, nil).Remove(s.ctx, "sess-1")
	s.True(apperrors.IsCode(err, apperrors.CodeStorageError))
}

func (s *ArchiverTestSuite) TestContentType() {
	s.Equal("image/png", contentType("estructura.png"))
	s.Equal("chemical/x-pdb", contentType("minimized.pdb"))
	s.Equal("application/octet-stream", contentType("blob"))
}

func TestArchiverTestSuite(t *testing.T) {
	suite.Run(t, new(ArchiverTestSuite))
}

//Personal.AI order the ending
