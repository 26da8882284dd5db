// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Sink uploads frames to an S3 bucket so long runs on headless machines
// can be inspected without copying files around.
type S3Sink struct {
	svc    *s3.S3
	bucket string
	prefix string
}

// NewS3Sink parses an s3://bucket/prefix path. Credentials and region come
// from the ambient AWS environment.
func NewS3Sink(path string) (*S3Sink, error) {
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(path, "s3://"), "/")
	if bucket == "" {
		return nil, fmt.Errorf("invalid s3 path %q", path)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}

	return &S3Sink{svc: s3.New(sess), bucket: bucket, prefix: prefix}, nil
}

func (s *S3Sink) WriteFrame(iteration int, data []byte) error {
	key := FrameName(iteration)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	req, _ := s.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/svg+xml"),
	})
	return req.Send()
}
