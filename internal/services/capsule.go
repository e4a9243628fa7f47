package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sealbox/sealbox/internal/models"
)

var (
	ErrCapsuleNotFound   = errors.New("capsule not found")
	ErrShareNotFound     = errors.New("capsule share not found")
	ErrShareNotPending   = errors.New("capsule share is not pending")
	ErrNotCapsuleOwner   = errors.New("only the owner can modify this capsule")
	ErrImageNotInCapsule = errors.New("image does not belong to this capsule")
)

const capsuleColumns = `c.id, c.user_id, c.title, c.description, c.vision, c.design,
	       c.privacy, c.status, c.deliver_at, c.created_at, c.updated_at`

// CapsuleService owns capsule storage and read authorization. Every read
// path resolves through CanViewCapsule; friendship facts come from the
// FriendChecker so the query logic is never re-derived here.
type CapsuleService struct {
	db      DB
	friends FriendChecker
}

func NewCapsuleService(db DB, friends FriendChecker) *CapsuleService {
	return &CapsuleService{db: db, friends: friends}
}

// Create inserts the capsule, its ordered images, and its share rows as one
// transaction. A capsule with requested shares can never exist without them.
func (s *CapsuleService) Create(ctx context.Context, params models.CreateCapsuleParams) (*models.Capsule, error) {
	status := models.CapsuleStatusCompleted
	if len(params.SharedWith) > 0 {
		status = models.CapsuleStatusPending
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin capsule create: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	capsule := &models.Capsule{}
	err = tx.QueryRow(ctx,
		`INSERT INTO capsules (user_id, title, description, vision, design, privacy, status, deliver_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, user_id, title, description, vision, design, privacy, status, deliver_at, created_at, updated_at`,
		params.UserID, params.Title, params.Description, params.Vision, params.Design,
		params.Privacy, status, params.DeliverAt,
	).Scan(&capsule.ID, &capsule.UserID, &capsule.Title, &capsule.Description, &capsule.Vision,
		&capsule.Design, &capsule.Privacy, &capsule.Status, &capsule.DeliverAt,
		&capsule.CreatedAt, &capsule.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating capsule: %w", err)
	}

	for i, img := range params.Images {
		_, err = tx.Exec(ctx,
			`INSERT INTO capsule_images (capsule_id, position, path, comment)
			 VALUES ($1, $2, $3, $4)`,
			capsule.ID, i, img.Path, img.Comment,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting capsule image: %w", err)
		}
		capsule.Images = append(capsule.Images, models.CapsuleImage{Position: i, Path: img.Path, Comment: img.Comment})
	}

	for _, inviteeID := range params.SharedWith {
		share := models.CapsuleShare{}
		err = tx.QueryRow(ctx,
			`INSERT INTO capsule_shares (capsule_id, user_id, status)
			 VALUES ($1, $2, 'pending')
			 RETURNING id, capsule_id, user_id, status, created_at`,
			capsule.ID, inviteeID,
		).Scan(&share.ID, &share.CapsuleID, &share.UserID, &share.Status, &share.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting capsule share: %w", err)
		}
		capsule.Shares = append(capsule.Shares, share)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit capsule create: %w", err)
	}
	committed = true

	return capsule, nil
}

// GetDetails loads a capsule and checks the viewer may see it. A capsule the
// viewer may not see reports ErrCapsuleNotFound, not a permission error, so
// its existence is not leaked.
func (s *CapsuleService) GetDetails(ctx context.Context, viewerID, capsuleID uuid.UUID) (*models.CapsuleSummary, error) {
	capsule := &models.CapsuleSummary{}
	err := s.db.QueryRow(ctx,
		`SELECT `+capsuleColumns+`, u.name
		 FROM capsules c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.id = $1`,
		capsuleID,
	).Scan(&capsule.ID, &capsule.UserID, &capsule.Title, &capsule.Description, &capsule.Vision,
		&capsule.Design, &capsule.Privacy, &capsule.Status, &capsule.DeliverAt,
		&capsule.CreatedAt, &capsule.UpdatedAt, &capsule.OwnerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCapsuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting capsule: %w", err)
	}

	shares, err := s.loadShares(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	plainShares := make([]models.CapsuleShare, len(shares))
	for i, sh := range shares {
		plainShares[i] = sh.CapsuleShare
	}

	isFriend := false
	if capsule.UserID != viewerID {
		isFriend, err = s.friends.IsFriend(ctx, viewerID, capsule.UserID)
		if err != nil {
			return nil, err
		}
	}

	if !CanViewCapsule(viewerID, &capsule.Capsule, plainShares, isFriend) {
		return nil, ErrCapsuleNotFound
	}

	images, err := s.loadImages(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	capsule.Images = images
	capsule.Shares = plainShares
	for _, sh := range plainShares {
		if sh.UserID == viewerID {
			capsule.ShareStatus = sh.Status
		}
	}
	annotate(capsule, viewerID)

	return capsule, nil
}

// ListVisible returns every capsule the viewer may see, newest first. The
// candidate set (own, shared-with, friends' non-private) is narrowed in SQL;
// the predicate's rules are pushed down rather than filtering in memory.
func (s *CapsuleService) ListVisible(ctx context.Context, viewerID uuid.UUID) ([]models.CapsuleSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+capsuleColumns+`, u.name, COALESCE(cs.status, 'pending')
		 FROM capsules c
		 JOIN users u ON u.id = c.user_id
		 LEFT JOIN capsule_shares cs ON cs.capsule_id = c.id AND cs.user_id = $1
		 WHERE c.user_id = $1
		    OR cs.user_id IS NOT NULL
		    OR (c.privacy IN ('friends', 'public') AND EXISTS(
		          SELECT 1 FROM friend_requests fr
		          WHERE ((fr.user_id = $1 AND fr.friend_id = c.user_id)
		             OR (fr.user_id = c.user_id AND fr.friend_id = $1))
		            AND fr.status = 'accepted'
		       ))
		 ORDER BY c.created_at DESC`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing visible capsules: %w", err)
	}
	defer rows.Close()

	return s.collectSummaries(rows, viewerID)
}

// ListForOwner returns the capsules of one specific owner that the viewer may
// see, newest first.
func (s *CapsuleService) ListForOwner(ctx context.Context, viewerID, ownerID uuid.UUID) ([]models.CapsuleSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+capsuleColumns+`, u.name, COALESCE(cs.status, 'pending')
		 FROM capsules c
		 JOIN users u ON u.id = c.user_id
		 LEFT JOIN capsule_shares cs ON cs.capsule_id = c.id AND cs.user_id = $1
		 WHERE c.user_id = $2
		   AND (c.user_id = $1
		     OR cs.user_id IS NOT NULL
		     OR (c.privacy IN ('friends', 'public') AND EXISTS(
		           SELECT 1 FROM friend_requests fr
		           WHERE ((fr.user_id = $1 AND fr.friend_id = c.user_id)
		              OR (fr.user_id = c.user_id AND fr.friend_id = $1))
		             AND fr.status = 'accepted'
		        )))
		 ORDER BY c.created_at DESC`,
		viewerID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing capsules for owner: %w", err)
	}
	defer rows.Close()

	return s.collectSummaries(rows, viewerID)
}

// ListShared returns the shares addressed to the viewer, newest first.
func (s *CapsuleService) ListShared(ctx context.Context, viewerID uuid.UUID) ([]models.SharedCapsule, error) {
	rows, err := s.db.Query(ctx,
		`SELECT cs.id, c.id, c.title, c.vision, c.user_id, u.name, cs.status, cs.created_at
		 FROM capsule_shares cs
		 JOIN capsules c ON cs.capsule_id = c.id
		 JOIN users u ON c.user_id = u.id
		 WHERE cs.user_id = $1
		 ORDER BY cs.created_at DESC`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing shared capsules: %w", err)
	}
	defer rows.Close()

	var shared []models.SharedCapsule
	for rows.Next() {
		var sc models.SharedCapsule
		if err := rows.Scan(&sc.ShareID, &sc.CapsuleID, &sc.Title, &sc.Vision, &sc.OwnerID, &sc.SharedBy, &sc.Status, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning shared capsule: %w", err)
		}
		shared = append(shared, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing shared capsules: %w", err)
	}

	if shared == nil {
		shared = []models.SharedCapsule{}
	}

	return shared, nil
}

// AcceptShare appends the invitee's images to the capsule and marks their
// share accepted, in one transaction. The share must still be pending.
func (s *CapsuleService) AcceptShare(ctx context.Context, viewerID, capsuleID uuid.UUID, images []models.NewImage) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin share accept: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE capsule_shares SET status = 'accepted'
		 WHERE capsule_id = $1 AND user_id = $2 AND status = 'pending'`,
		capsuleID, viewerID,
	)
	if err != nil {
		return fmt.Errorf("accepting share: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM capsule_shares WHERE capsule_id = $1 AND user_id = $2)`,
			capsuleID, viewerID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking share: %w", err)
		}
		if !exists {
			return ErrShareNotFound
		}
		return ErrShareNotPending
	}

	var next int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM capsule_images WHERE capsule_id = $1`,
		capsuleID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("finding next image position: %w", err)
	}

	for i, img := range images {
		_, err = tx.Exec(ctx,
			`INSERT INTO capsule_images (capsule_id, position, path, comment)
			 VALUES ($1, $2, $3, $4)`,
			capsuleID, next+i, img.Path, img.Comment,
		)
		if err != nil {
			return fmt.Errorf("inserting capsule image: %w", err)
		}
	}

	if err := s.refreshStatus(ctx, tx, capsuleID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit share accept: %w", err)
	}
	committed = true
	return nil
}

// UpdateShareStatus sets the viewer's own share state on a capsule.
func (s *CapsuleService) UpdateShareStatus(ctx context.Context, viewerID, shareID uuid.UUID, status models.ShareStatus) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin share update: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var capsuleID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE capsule_shares SET status = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING capsule_id`,
		status, shareID, viewerID,
	).Scan(&capsuleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrShareNotFound
	}
	if err != nil {
		return fmt.Errorf("updating share status: %w", err)
	}

	if err := s.refreshStatus(ctx, tx, capsuleID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit share update: %w", err)
	}
	committed = true
	return nil
}

// UpdateImageComment replaces the caption of one image. Owner only.
func (s *CapsuleService) UpdateImageComment(ctx context.Context, viewerID, capsuleID uuid.UUID, path, comment string) error {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT user_id FROM capsules WHERE id = $1`, capsuleID,
	).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCapsuleNotFound
	}
	if err != nil {
		return fmt.Errorf("getting capsule owner: %w", err)
	}
	if ownerID != viewerID {
		return ErrNotCapsuleOwner
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE capsule_images SET comment = $1 WHERE capsule_id = $2 AND path = $3`,
		comment, capsuleID, path,
	)
	if err != nil {
		return fmt.Errorf("updating image comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotInCapsule
	}
	return nil
}

func (s *CapsuleService) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM capsules WHERE user_id = $1`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting capsules: %w", err)
	}
	return count, nil
}

// MonthlyStats reports the owner's capsule creation counts per month of the
// given year, broken down by privacy. Every month is present, zeroes included.
func (s *CapsuleService) MonthlyStats(ctx context.Context, ownerID uuid.UUID, year int) ([]models.MonthStats, error) {
	rows, err := s.db.Query(ctx,
		`SELECT EXTRACT(MONTH FROM created_at)::int,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE privacy = 'private'),
		        COUNT(*) FILTER (WHERE privacy = 'friends'),
		        COUNT(*) FILTER (WHERE privacy = 'public')
		 FROM capsules
		 WHERE user_id = $1 AND EXTRACT(YEAR FROM created_at) = $2
		 GROUP BY 1
		 ORDER BY 1`,
		ownerID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("loading monthly stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.MonthStats, 12)
	for i := range stats {
		stats[i].Month = time.Month(i + 1).String()[:3]
	}

	for rows.Next() {
		var month, created, private, friends, public int
		if err := rows.Scan(&month, &created, &private, &friends, &public); err != nil {
			return nil, fmt.Errorf("scanning monthly stats: %w", err)
		}
		if month < 1 || month > 12 {
			continue
		}
		stats[month-1].Created = created
		stats[month-1].Private = private
		stats[month-1].Friends = friends
		stats[month-1].Public = public
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading monthly stats: %w", err)
	}

	return stats, nil
}

// refreshStatus recomputes the capsule's pending/completed status from its
// remaining unresolved shares.
func (s *CapsuleService) refreshStatus(ctx context.Context, tx Tx, capsuleID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE capsules SET status = CASE
		   WHEN EXISTS(SELECT 1 FROM capsule_shares WHERE capsule_id = $1 AND status = 'pending')
		   THEN 'pending' ELSE 'completed' END
		 WHERE id = $1`,
		capsuleID,
	)
	if err != nil {
		return fmt.Errorf("refreshing capsule status: %w", err)
	}
	return nil
}

func (s *CapsuleService) loadImages(ctx context.Context, capsuleID uuid.UUID) ([]models.CapsuleImage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT position, path, comment FROM capsule_images
		 WHERE capsule_id = $1 ORDER BY position`,
		capsuleID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading capsule images: %w", err)
	}
	defer rows.Close()

	var images []models.CapsuleImage
	for rows.Next() {
		var img models.CapsuleImage
		if err := rows.Scan(&img.Position, &img.Path, &img.Comment); err != nil {
			return nil, fmt.Errorf("scanning capsule image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading capsule images: %w", err)
	}
	return images, nil
}

func (s *CapsuleService) loadShares(ctx context.Context, capsuleID uuid.UUID) ([]models.ShareWithUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT cs.id, cs.capsule_id, cs.user_id, cs.status, cs.created_at, u.name, u.email
		 FROM capsule_shares cs
		 JOIN users u ON cs.user_id = u.id
		 WHERE cs.capsule_id = $1
		 ORDER BY cs.created_at`,
		capsuleID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading capsule shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ShareWithUser
	for rows.Next() {
		var sh models.ShareWithUser
		if err := rows.Scan(&sh.ID, &sh.CapsuleID, &sh.UserID, &sh.Status, &sh.CreatedAt, &sh.UserName, &sh.UserEmail); err != nil {
			return nil, fmt.Errorf("scanning capsule share: %w", err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading capsule shares: %w", err)
	}
	return shares, nil
}

func (s *CapsuleService) collectSummaries(rows Rows, viewerID uuid.UUID) ([]models.CapsuleSummary, error) {
	var capsules []models.CapsuleSummary
	for rows.Next() {
		var c models.CapsuleSummary
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Vision,
			&c.Design, &c.Privacy, &c.Status, &c.DeliverAt,
			&c.CreatedAt, &c.UpdatedAt, &c.OwnerName, &c.ShareStatus); err != nil {
			return nil, fmt.Errorf("scanning capsule: %w", err)
		}
		annotate(&c, viewerID)
		capsules = append(capsules, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading capsules: %w", err)
	}

	if capsules == nil {
		capsules = []models.CapsuleSummary{}
	}

	return capsules, nil
}

func annotate(c *models.CapsuleSummary, viewerID uuid.UUID) {
	c.IsOwner = c.UserID == viewerID
	if c.ShareStatus == "" {
		c.ShareStatus = models.ShareStatusPending
	}
	c.DeliverHint = c.DeliverAt.Format(models.HumanTimeLayout)
}
