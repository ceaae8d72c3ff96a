package config

// Config 配置主体
type Config struct {
	Server            ServerConfig      `mapstructure:"server"`
	Redis             RedisConfig       `mapstructure:"redis"`
	Upstream          UpstreamConfig    `mapstructure:"upstream"`
	IM                IMConfig          `mapstructure:"im"`
	Logstash          LogstashConfig    `mapstructure:"logstash"`
	Kafka             KafkaConfig       `mapstructure:"kafka"`
	KafkaRoomConsumer KafkaRoomConsumer `mapstructure:"kafka_room_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// UpstreamConfig 商城主站 API
type UpstreamConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"`       // 秒
	ServiceToken string `mapstructure:"service_token"` // 事件驱动拉取用的服务间凭据
}

// IMConfig 会话层参数
type IMConfig struct {
	JoinEchoTimeout    int `mapstructure:"join_echo_timeout"`    // 秒，JOIN 回声兜底
	SessionIdleTimeout int `mapstructure:"session_idle_timeout"` // 秒，空闲会话清理阈值
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaRoomConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
