package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donghass/my-commerce/internal/carts/domain"
	"github.com/donghass/my-commerce/internal/carts/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, userID int64) (*domain.Cart, error) {
	now := time.Now().UTC()
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO carts (user_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`, userID, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return &domain.Cart{ID: id, UserID: userID, CreatedAt: now, Items: []domain.CartItem{}}, nil
}

func (r *Repository) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrCartNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, cart_id, product_id, product_name, image_url, quantity, price, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at
	`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.ImageURL,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return &cart, nil
}

func (r *Repository) AddItem(ctx context.Context, cartID int64, item domain.CartItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, product_name, image_url, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		cartID,
		item.ProductID,
		item.ProductName,
		item.ImageURL,
		item.Quantity,
		item.Price,
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert cart item: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2
	`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrCartItemNotFound
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, itemID int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrCartItemNotFound
	}
	return nil
}

func (r *Repository) ClearItems(ctx context.Context, cartID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	return nil
}
