package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/google"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/retry"
	"google.golang.org/api/gmail/v1"
)

const (
	Source = "gmail"

	DefaultUser  = "me"
	DefaultQuery = "has:attachment newer_than:7d filename:(csv OR xlsx)"

	noSubject = "(no subject)"
)

// Extractor downloads .csv and .xlsx attachments of the messages matching a
// Gmail search query. When archiveDir is set the raw bytes are also saved
// under archiveDir/<date>/.
type Extractor struct {
	log        *slog.Logger
	svc        *gmail.Service
	user       string
	archiveDir string
	policy     retry.Policy
	now        func() time.Time
}

func NewExtractor(log *slog.Logger, svc *gmail.Service, user, archiveDir string) *Extractor {
	if user == "" {
		user = DefaultUser
	}

	return &Extractor{
		log:        log,
		svc:        svc,
		user:       user,
		archiveDir: archiveDir,
		policy:     google.RetryPolicy,
		now:        time.Now,
	}
}

// Extract lists the messages page by page and yields their attachments in
// message order. Messages are downloaded only as the sequence is consumed.
func (e *Extractor) Extract(ctx context.Context, query string) iter.Seq2[*domain.Attachment, error] {
	return func(yield func(*domain.Attachment, error) bool) {
		pageToken := ""

		for {
			page, err := e.listMessages(ctx, query, pageToken)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, m := range page.Messages {
				attachments, err := e.messageAttachments(ctx, m.Id)
				if err != nil {
					yield(nil, err)
					return
				}

				for _, a := range attachments {
					if !yield(a, nil) {
						return
					}
				}
			}

			if page.NextPageToken == "" {
				return
			}
			pageToken = page.NextPageToken
		}
	}
}

func (e *Extractor) listMessages(ctx context.Context, query, pageToken string) (*gmail.ListMessagesResponse, error) {
	call := e.svc.Users.Messages.List(e.user).Q(query)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	var resp *gmail.ListMessagesResponse
	err := retry.Do(ctx, e.log, e.policy, "gmail list messages", func(ctx context.Context) (err error) {
		resp, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	e.log.DebugContext(ctx, "messages listed", slog.Int("count", len(resp.Messages)))

	return resp, nil
}

func (e *Extractor) messageAttachments(ctx context.Context, id string) ([]*domain.Attachment, error) {
	var msg *gmail.Message
	err := retry.Do(ctx, e.log, e.policy, "gmail get message", func(ctx context.Context) (err error) {
		msg, err = e.svc.Users.Messages.Get(e.user, id).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %q: %w", id, err)
	}

	subject := header(msg.Payload, "Subject")
	if subject == "" {
		subject = noSubject
	}

	var attachments []*domain.Attachment
	for part := range parts(msg.Payload) {
		format, ok := domain.FormatFromFilename(part.Filename)
		if !ok {
			continue
		}

		content, err := e.partContent(ctx, id, part)
		if err != nil {
			return nil, err
		}

		a := &domain.Attachment{
			Filename:  filepath.Base(part.Filename),
			MessageID: id,
			Subject:   subject,
			Source:    Source,
			Format:    format,
			Content:   content,
		}

		if e.archiveDir != "" {
			path, err := e.archive(a)
			if err != nil {
				return nil, err
			}
			e.log.DebugContext(ctx, "attachment archived", slog.String("path", path))
		}

		e.log.InfoContext(ctx, "attachment downloaded",
			slog.String("filename", a.Filename),
			slog.String("subject", subject),
			slog.Int("size", len(content)),
		)

		attachments = append(attachments, a)
	}

	return attachments, nil
}

// partContent returns the decoded body of a part, downloading it separately
// when Gmail only returns an attachment id.
func (e *Extractor) partContent(ctx context.Context, msgID string, part *gmail.MessagePart) ([]byte, error) {
	if part.Body == nil {
		return nil, nil
	}

	data := part.Body.Data
	if part.Body.AttachmentId != "" {
		var body *gmail.MessagePartBody
		err := retry.Do(ctx, e.log, e.policy, "gmail get attachment", func(ctx context.Context) (err error) {
			body, err = e.svc.Users.Messages.Attachments.Get(e.user, msgID, part.Body.AttachmentId).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get attachment %q of message %q: %w", part.Filename, msgID, err)
		}
		data = body.Data
	}

	content, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment %q of message %q: %w", part.Filename, msgID, err)
	}

	return content, nil
}

// archive writes the attachment under archiveDir/<date>/ and never overwrites:
// name.csv, name_1.csv, name_2.csv...
func (e *Extractor) archive(a *domain.Attachment) (string, error) {
	dir := filepath.Join(e.archiveDir, e.now().Format(time.DateOnly))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create archive directory %q: %w", dir, err)
	}

	ext := filepath.Ext(a.Filename)
	stem := strings.TrimSuffix(a.Filename, ext)

	for i := 0; ; i++ {
		name := a.Filename
		if i > 0 {
			name = stem + "_" + strconv.Itoa(i) + ext
		}

		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create archive file %q: %w", path, err)
		}

		_, err = f.Write(a.Content)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return "", fmt.Errorf("failed to write archive file %q: %w", path, err)
		}

		return path, nil
	}
}

// parts walks the MIME tree depth-first and yields the parts carrying a filename.
func parts(root *gmail.MessagePart) iter.Seq[*gmail.MessagePart] {
	return func(yield func(*gmail.MessagePart) bool) {
		var walk func(p *gmail.MessagePart) bool
		walk = func(p *gmail.MessagePart) bool {
			if p == nil {
				return true
			}
			if p.Filename != "" && !yield(p) {
				return false
			}
			for _, child := range p.Parts {
				if !walk(child) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

func header(p *gmail.MessagePart, name string) string {
	if p == nil {
		return ""
	}
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Decode decodes Gmail's base64url body data, padded or not.
func Decode(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
