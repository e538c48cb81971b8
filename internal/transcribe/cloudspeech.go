package transcribe

import (
	"context"
	"fmt"
	"path"
	"strings"

	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"google.golang.org/api/option"

	"github.com/distill-go/distill/internal/storage"
)

const speechEndpointPort = 443

// CloudSpeechConfig configures the Cloud Speech-to-Text v2 backend.
type CloudSpeechConfig struct {
	ProjectID string
	Location  string
	Model     string
}

// CloudSpeechService implements Service on Cloud Speech-to-Text v2 batch
// recognition. The job id is the long-running operation name; the service
// writes the transcript document to the audio object's bucket.
type CloudSpeechService struct {
	client     *speech.Client
	recognizer string
	model      string
}

func NewCloudSpeechService(ctx context.Context, cfg CloudSpeechConfig, opts ...option.ClientOption) (*CloudSpeechService, error) {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	if location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", location, speechEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	return &CloudSpeechService{
		client:     client,
		recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", cfg.ProjectID, location),
		model:      cfg.Model,
	}, nil
}

func (s *CloudSpeechService) StartJob(ctx context.Context, audioURI string, opts JobOptions) (string, error) {
	bucket, key, err := storage.ParseURI(audioURI)
	if err != nil {
		return "", &SubmitError{Kind: SubmitInvalidInput, Err: err}
	}

	outputURI := storage.ObjectURI(bucket, path.Join(opts.OutputPrefix, path.Base(key)))

	op, err := s.client.BatchRecognize(ctx, &speechpb.BatchRecognizeRequest{
		Recognizer: s.recognizer,
		Config: &speechpb.RecognitionConfig{
			Model:         s.model,
			LanguageCodes: []string{opts.Language},
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Features: &speechpb.RecognitionFeatures{
				EnableAutomaticPunctuation: true,
			},
		},
		Files: []*speechpb.BatchRecognizeFileMetadata{{
			AudioSource: &speechpb.BatchRecognizeFileMetadata_Uri{Uri: audioURI},
		}},
		RecognitionOutputConfig: &speechpb.RecognitionOutputConfig{
			Output: &speechpb.RecognitionOutputConfig_GcsOutputConfig{
				GcsOutputConfig: &speechpb.GcsOutputConfig{Uri: outputURI},
			},
		},
	})
	if err != nil {
		return "", err
	}

	return op.Name(), nil
}

func (s *CloudSpeechService) GetJobStatus(ctx context.Context, jobID string) (Snapshot, error) {
	op := s.client.BatchRecognizeOperation(jobID)

	resp, err := op.Poll(ctx)
	if err != nil {
		if op.Done() {
			// The operation finished with an error: that is the job's
			// terminal verdict, not a transport problem.
			return Snapshot{State: StateFailed, FailureReason: err.Error()}, nil
		}
		return Snapshot{}, err
	}

	if !op.Done() {
		return Snapshot{State: progressState(op)}, nil
	}

	uri, reason := resultLocation(resp)
	if reason != "" {
		return Snapshot{State: StateFailed, FailureReason: reason}, nil
	}
	return Snapshot{State: StateCompleted, OutputURI: uri}, nil
}

func (s *CloudSpeechService) Close() error {
	return s.client.Close()
}

func progressState(op *speech.BatchRecognizeOperation) State {
	meta, err := op.Metadata()
	if err != nil || meta == nil || meta.GetProgressPercent() == 0 {
		return StateQueued
	}
	return StateInProgress
}

func resultLocation(resp *speechpb.BatchRecognizeResponse) (uri, failureReason string) {
	for _, result := range resp.GetResults() {
		if errStatus := result.GetError(); errStatus != nil {
			return "", errStatus.GetMessage()
		}
		if u := result.GetCloudStorageResult().GetUri(); u != "" {
			return u, ""
		}
		if u := result.GetUri(); u != "" {
			return u, ""
		}
	}
	return "", "batch response contained no transcript location"
}
