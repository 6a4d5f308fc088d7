package validation

// ProductCreate is the body of POST /products
type ProductCreate struct {
	Name  string  `json:"name" validate:"required,min=1"`
	About string  `json:"about" validate:"required,min=1"`
	Price float64 `json:"price" validate:"required,min=0.01,lt=10000000000"`
}

// UserCreate is the body of POST /users
type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UserUpdate is the body of PUT and PATCH /users/:id. Both verbs accept any subset of fields.
type UserUpdate struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=255"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=6,max=72"`
}

// Empty reports whether no field was supplied
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil
}

// OrderCreate is the body of POST /orders
type OrderCreate struct {
	UserID     int64   `json:"userId" validate:"required,gt=0,lte=2147483647"`
	ProductIDs []int64 `json:"productIds" validate:"required,min=1,dive,gt=0,lte=2147483647"`
	Payment    *bool   `json:"payment"`
}

// OrderUpdate is the body of PUT and PATCH /orders/:id
type OrderUpdate struct {
	UserID     *int64   `json:"userId" validate:"omitnil,gt=0,lte=2147483647"`
	ProductIDs *[]int64 `json:"productIds" validate:"omitnil,min=1,dive,gt=0,lte=2147483647"`
	Payment    *bool    `json:"payment"`
}

// Empty reports whether no field was supplied
func (o OrderUpdate) Empty() bool {
	return o.UserID == nil && o.ProductIDs == nil && o.Payment == nil
}

// ReviewCreate is the body of POST /reviews
type ReviewCreate struct {
	UserID    int64  `json:"userId" validate:"required,gt=0,lte=2147483647"`
	ProductID int64  `json:"productId" validate:"required,gt=0,lte=2147483647"`
	Score     int    `json:"score" validate:"required,min=1,max=5"`
	Content   string `json:"content" validate:"required,min=1,max=1000"`
}

// ReviewUpdate is the body of PUT and PATCH /reviews/:id
type ReviewUpdate struct {
	UserID    *int64  `json:"userId" validate:"omitnil,gt=0,lte=2147483647"`
	ProductID *int64  `json:"productId" validate:"omitnil,gt=0,lte=2147483647"`
	Score     *int    `json:"score" validate:"omitnil,min=1,max=5"`
	Content   *string `json:"content" validate:"omitnil,min=1,max=1000"`
}

// Empty reports whether no field was supplied
func (r ReviewUpdate) Empty() bool {
	return r.UserID == nil && r.ProductID == nil && r.Score == nil && r.Content == nil
}
